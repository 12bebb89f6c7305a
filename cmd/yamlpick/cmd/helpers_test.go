package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/yamlpick/internal/config"
)

const (
	testLocale = "home:\n  title: Welcome\nnav:\n  home: Welcome\n  about: About us\n"
	testSource = "<h1>Welcome</h1>\n<a>About us</a>\n"
)

// isolateEnv keeps user config, logs and env overrides out of the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(config.ConfigDirEnv, "")
	return home
}

// newWorkspace writes en.yaml and App.vue into a fresh project root.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "en.yaml"), []byte(testLocale), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "App.vue"), []byte(testSource), 0o644))
	return root
}

// runCLI executes the root command and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func mkdir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// evalPath resolves symlinks so temp dirs compare equal on macOS.
func evalPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
