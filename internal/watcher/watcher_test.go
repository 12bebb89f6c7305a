package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create", OpCreate, "CREATE"},
		{"modify", OpModify, "MODIFY"},
		{"delete", OpDelete, "DELETE"},
		{"rename", OpRename, "RENAME"},
		{"gitignore", OpGitignoreChange, "GITIGNORE_CHANGE"},
		{"config", OpConfigChange, "CONFIG_CHANGE"},
		{"unknown", Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 200*time.Millisecond, opts.DebounceWindow)
	assert.Equal(t, 5*time.Second, opts.PollInterval)
	assert.Equal(t, 100, opts.EventBufferSize)
	assert.False(t, opts.ForcePolling)
	assert.Equal(t, []string{".yamlpick.yaml", ".yamlpick.yml"}, opts.ConfigFileNames)
	assert.NoError(t, opts.Validate())
}

func TestOptions_Validate(t *testing.T) {
	assert.Error(t, Options{DebounceWindow: -1}.Validate())
	assert.Error(t, Options{PollInterval: -time.Second}.Validate())
	assert.Error(t, Options{EventBufferSize: -5}.Validate())
	assert.NoError(t, Options{}.Validate())
}

func TestOptions_WithDefaults(t *testing.T) {
	// Given: options with only the debounce window set
	opts := Options{DebounceWindow: 10 * time.Millisecond, ForcePolling: true}

	// When: applying defaults
	got := opts.WithDefaults()

	// Then: set values are kept and zero values filled in
	assert.Equal(t, 10*time.Millisecond, got.DebounceWindow)
	assert.True(t, got.ForcePolling)
	assert.Equal(t, 5*time.Second, got.PollInterval)
	assert.Equal(t, 100, got.EventBufferSize)
	assert.NotEmpty(t, got.ConfigFileNames)
}
