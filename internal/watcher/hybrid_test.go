package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startHybrid starts a watcher on dir and waits until it is ready.
func startHybrid(t *testing.T, dir string, opts Options) *HybridWatcher {
	t.Helper()
	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	go func() { _ = w.Start(ctx, dir) }()
	time.Sleep(150 * time.Millisecond)
	return w
}

// collectUntil gathers batched events until match returns true or timeout.
func collectUntil(w *HybridWatcher, match func(Event) bool, timeout time.Duration) ([]Event, bool) {
	var seen []Event
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case batch, ok := <-w.Events():
			if !ok {
				return seen, false
			}
			for _, e := range batch {
				seen = append(seen, e)
				if match(e) {
					return seen, true
				}
			}
		case <-timer.C:
			return seen, false
		}
	}
}

func fastOptions() Options {
	return Options{DebounceWindow: 20 * time.Millisecond, PollInterval: 30 * time.Millisecond}.WithDefaults()
}

func TestHybridWatcher_NewHybridWatcher(t *testing.T) {
	// Given: default options
	w, err := NewHybridWatcher(DefaultOptions())

	// Then: the watcher is valid
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.IsHealthy())
	assert.Contains(t, []string{"fsnotify", "polling"}, w.WatcherType())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsHealthy())
}

func TestHybridWatcher_InvalidOptions(t *testing.T) {
	_, err := NewHybridWatcher(Options{DebounceWindow: -time.Second})

	assert.Error(t, err)
}

func TestHybridWatcher_ForcePolling(t *testing.T) {
	opts := fastOptions()
	opts.ForcePolling = true

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Equal(t, "polling", w.WatcherType())
}

func TestHybridWatcher_DetectsYAMLChanges(t *testing.T) {
	for _, polling := range []bool{false, true} {
		name := "fsnotify"
		if polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			// Given: a watched project
			dir := t.TempDir()
			opts := fastOptions()
			opts.ForcePolling = polling
			w := startHybrid(t, dir, opts)

			// When: a YAML file is created
			require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("a: 1\n"), 0o644))

			// Then: a batch with the file arrives
			_, ok := collectUntil(w, func(e Event) bool {
				return e.Path == "en.yaml" && (e.Operation == OpCreate || e.Operation == OpModify)
			}, 2*time.Second)
			assert.True(t, ok)
		})
	}
}

func TestHybridWatcher_DetectsNewSubdirectory(t *testing.T) {
	// Given: a watched project
	dir := t.TempDir()
	w := startHybrid(t, dir, fastOptions())

	// When: a directory is created and a file is written into it later
	sub := filepath.Join(dir, "locales")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "de.yaml"), []byte("a: 1\n"), 0o644))

	// Then: the nested file is reported
	_, ok := collectUntil(w, func(e Event) bool { return e.Path == "locales/de.yaml" }, 2*time.Second)
	assert.True(t, ok)
}

func TestHybridWatcher_IgnoresGitignoredPaths(t *testing.T) {
	// Given: a project ignoring tmp/ and *.bak
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("tmp/\n*.bak\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tmp"), 0o755))
	w := startHybrid(t, dir, fastOptions())

	// When: ignored and visible files change
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp", "x.yaml"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml.bak"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("a"), 0o644))

	// Then: only the visible file is reported
	seen, ok := collectUntil(w, func(e Event) bool { return e.Path == "en.yaml" }, 2*time.Second)
	require.True(t, ok)
	for _, e := range seen {
		assert.NotEqual(t, "tmp/x.yaml", e.Path)
		assert.NotEqual(t, "en.yaml.bak", e.Path)
	}
}

func TestHybridWatcher_SpecialOperations(t *testing.T) {
	// Given: a watched project
	dir := t.TempDir()
	w := startHybrid(t, dir, fastOptions())

	// When: .gitignore and the project config change
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.tmp\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".yamlpick.yaml"), []byte("index:\n  max_files: 5\n"), 0o644))

	// Then: both arrive with their dedicated operations
	ops := map[string]Operation{}
	_, _ = collectUntil(w, func(e Event) bool {
		ops[e.Path] = e.Operation
		_, g := ops[".gitignore"]
		_, c := ops[".yamlpick.yaml"]
		return g && c
	}, 2*time.Second)

	assert.Equal(t, OpGitignoreChange, ops[".gitignore"])
	assert.Equal(t, OpConfigChange, ops[".yamlpick.yaml"])
}

func TestHybridWatcher_Start_InvalidPath_ReturnsError(t *testing.T) {
	w, err := NewHybridWatcher(fastOptions())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestHybridWatcher_ContextCancel_StopsCleanly(t *testing.T) {
	dir := t.TempDir()
	w, err := NewHybridWatcher(fastOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx, dir)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	_, ok := <-w.Events()
	assert.False(t, ok, "events channel closed")
	_, ok = <-w.Errors()
	assert.False(t, ok, "errors channel closed")
}

func TestHybridWatcher_ConcurrentStop_Safe(t *testing.T) {
	w, err := NewHybridWatcher(fastOptions())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop())
		}()
	}
	wg.Wait()

	assert.Zero(t, w.DroppedBatches())
}

func TestHybridWatcher_DroppedBatches_IncrementsOnOverflow(t *testing.T) {
	// Given: a watcher with a one-batch buffer that nobody reads
	opts := fastOptions()
	opts.EventBufferSize = 1
	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	// When: more batches are emitted than fit
	for i := 0; i < 3; i++ {
		w.emitEvents([]Event{{Path: "en.yaml", Operation: OpModify}})
	}

	// Then: the overflow is counted
	assert.Equal(t, uint64(2), w.DroppedBatches())
}

func TestHybridWatcher_LoadGitignore_DeeperFileWins(t *testing.T) {
	// Given: the root ignores YAML and .config/ (walked before the root
	// .gitignore in lexical order) re-includes app.yaml
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.yaml\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".config", ".gitignore"), []byte("!app.yaml\n"), 0o644))

	w, err := NewHybridWatcher(fastOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.rootPath = dir

	// When: the matcher is loaded
	w.loadGitignore()

	// Then: the nested negation overrides the root rule
	assert.False(t, w.shouldIgnore(".config/app.yaml", false))
	assert.True(t, w.shouldIgnore(".config/other.yaml", false))
	assert.True(t, w.shouldIgnore("en.yaml", false))
}
