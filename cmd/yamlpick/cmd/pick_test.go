package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
)

func TestPickCmd_ReplacesSelection(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// Given: "Welcome" selected at byte 4 and the second path chosen
	_, stderr, err := runCLI(t, "2\n", "pick", "--file", file, "--offset", "4", "--length", "7", "--plain")

	// Then: the selection is replaced in place
	require.NoError(t, err)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "<h1>nav.home</h1>\n<a>About us</a>\n", string(content))
	assert.Contains(t, stderr, "1) home.title")
	assert.Contains(t, stderr, "2) nav.home")
}

func TestPickCmd_LineCol(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// Given: "About us" selected on line 2, column 4
	_, _, err := runCLI(t, "1\n", "pick", "--file", file, "--line", "2", "--col", "4", "--length", "8", "--plain")

	require.NoError(t, err)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Welcome</h1>\n<a>nav.about</a>\n", string(content))
}

func TestPickCmd_PrintLeavesFileAlone(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// When: picking with --print
	stdout, _, err := runCLI(t, "1\n", "pick", "--file", file, "--text", "Welcome", "--offset", "4", "--plain", "--print")

	// Then: the path goes to stdout and the file is unchanged
	require.NoError(t, err)
	assert.Equal(t, "home.title\n", stdout)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, testSource, string(content))
}

func TestPickCmd_MissIsSilent(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// Given: a selection no YAML value holds ("<h1>")
	stdout, stderr, err := runCLI(t, "1\n", "pick", "--file", file, "--offset", "0", "--length", "4", "--plain")

	// Then: no picker is shown and the file is untouched
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, testSource, string(content))
}

func TestPickCmd_CancelLeavesFileAlone(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// When: the prompt is answered with an empty line
	_, _, err := runCLI(t, "\n", "pick", "--file", file, "--offset", "4", "--length", "7", "--plain")

	require.NoError(t, err)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, testSource, string(content))
}

func TestPickCmd_StaleTextRejected(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)
	file := filepath.Join(root, "App.vue")

	// Given: --text that matches a value but not the bytes at the offset
	_, _, err := runCLI(t, "1\n", "pick", "--file", file, "--text", "Welcome", "--offset", "0", "--plain")

	// Then: the edit is refused and the file is untouched
	require.Error(t, err)
	var pe *pickerr.PickError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, pickerr.ErrCodeSelectionMismatch, pe.Code)
	content, _ := os.ReadFile(file)
	assert.Equal(t, testSource, string(content))
}

func TestPickCmd_RequiresFile(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "pick", "--text", "Welcome")

	assert.ErrorContains(t, err, "file")
}

func TestSelectedText(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "App.vue")
	require.NoError(t, os.WriteFile(file, []byte(testSource), 0o644))

	tests := []struct {
		name     string
		opts     pickOptions
		want     string
		wantCode string
	}{
		{name: "text wins", opts: pickOptions{text: "Welcome"}, want: "Welcome"},
		{name: "text and matching length", opts: pickOptions{text: "Welcome", length: 7}, want: "Welcome"},
		{name: "text and other length", opts: pickOptions{text: "Welcome", length: 3}, wantCode: pickerr.ErrCodeInvalidInput},
		{name: "offset range", opts: pickOptions{offset: 4, length: 7}, want: "Welcome"},
		{name: "line and col", opts: pickOptions{line: 2, col: 4, length: 8}, want: "About us"},
		{name: "empty selection", opts: pickOptions{offset: 4}, wantCode: pickerr.ErrCodeSelectionEmpty},
		{name: "line without col", opts: pickOptions{line: 2, length: 3}, wantCode: pickerr.ErrCodeInvalidInput},
		{name: "past end", opts: pickOptions{offset: 30, length: 20}, wantCode: pickerr.ErrCodeInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectedText(file, tt.opts)
			if tt.wantCode != "" {
				var pe *pickerr.PickError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantCode, pe.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectedText_MissingFile(t *testing.T) {
	_, err := selectedText(filepath.Join(t.TempDir(), "gone.vue"), pickOptions{offset: 0, length: 3})

	var pe *pickerr.PickError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, pickerr.CategoryIO, pe.Category)
}
