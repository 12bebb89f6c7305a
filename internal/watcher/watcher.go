package watcher

import (
	"context"
	"errors"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpGitignoreChange indicates a .gitignore file changed.
	OpGitignoreChange
	// OpConfigChange indicates the project config file changed.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpGitignoreChange:
		return "GITIGNORE_CHANGE"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// Event represents a file system event.
type Event struct {
	// Path is the slash-separated path relative to the watched root.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Watcher defines the interface for file system watching.
type Watcher interface {
	// Start begins watching the given directory recursively and blocks until
	// Stop is called or ctx is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the watcher and releases resources.
	// Safe to call multiple times.
	Stop() error

	// Events returns debounced event batches, sorted by path.
	// The channel is closed when the watcher stops.
	Events() <-chan []Event

	// Errors returns non-fatal watcher errors.
	// The channel is closed when the watcher stops.
	Errors() <-chan error
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 200ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode.
	// Default: 5s
	PollInterval time.Duration

	// ForcePolling skips fsnotify entirely.
	ForcePolling bool

	// EventBufferSize is the size of the batch channel buffer.
	// Default: 100
	EventBufferSize int

	// IgnorePatterns are additional patterns to ignore beyond .gitignore.
	// Patterns use gitignore syntax.
	IgnorePatterns []string

	// ConfigFileNames are base names reported as OpConfigChange.
	ConfigFileNames []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 100,
		ConfigFileNames: []string{".yamlpick.yaml", ".yamlpick.yml"},
	}
}

// Validate validates the options and returns an error if invalid.
func (o Options) Validate() error {
	if o.DebounceWindow < 0 {
		return errors.New("debounce window must not be negative")
	}
	if o.PollInterval < 0 {
		return errors.New("poll interval must not be negative")
	}
	if o.EventBufferSize < 0 {
		return errors.New("event buffer size must not be negative")
	}
	return nil
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.ConfigFileNames == nil {
		o.ConfigFileNames = defaults.ConfigFileNames
	}
	return o
}
