// Package ui provides the terminal quick pick and status display.
package ui

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// DefaultPlaceholder is shown above the options when none is configured.
const DefaultPlaceholder = "select yaml path to replace"

// Picker presents options and returns the one the user chose.
type Picker interface {
	// Pick blocks until the user chooses or cancels. picked is false when
	// the user cancelled.
	Pick(ctx context.Context, options []string) (choice string, picked bool, err error)
}

// PickConfig configures a pick.
type PickConfig struct {
	Input       io.Reader
	Output      io.Writer
	Placeholder string
	ForcePlain  bool
	NoColor     bool

	// CopyToClipboard also places the chosen path on the system clipboard.
	CopyToClipboard bool
}

// PickOption is a function that modifies PickConfig.
type PickOption func(*PickConfig)

// WithForcePlain forces the numbered prompt.
func WithForcePlain(force bool) PickOption {
	return func(c *PickConfig) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) PickOption {
	return func(c *PickConfig) {
		c.NoColor = noColor
	}
}

// WithPlaceholder sets the header shown above the options.
func WithPlaceholder(placeholder string) PickOption {
	return func(c *PickConfig) {
		if placeholder != "" {
			c.Placeholder = placeholder
		}
	}
}

// WithClipboard copies the chosen path to the clipboard.
func WithClipboard(enabled bool) PickOption {
	return func(c *PickConfig) {
		c.CopyToClipboard = enabled
	}
}

// NewPickConfig creates a PickConfig reading from in and drawing to out.
func NewPickConfig(in io.Reader, out io.Writer, opts ...PickOption) PickConfig {
	cfg := PickConfig{
		Input:       in,
		Output:      out,
		Placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewPicker returns the bubbletea picker for interactive terminals and the
// numbered prompt for pipes, CI or when plain output is forced.
func NewPicker(cfg PickConfig) Picker {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || !isTTYReader(cfg.Input) || DetectCI() {
		return NewPlainPicker(cfg)
	}
	if cfg.NoColor || DetectNoColor() {
		cfg.NoColor = true
	}
	return NewTUIPicker(cfg)
}

// Pick shows options and returns the chosen one. An empty option list shows
// nothing and reports not picked.
func Pick(ctx context.Context, cfg PickConfig, options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, nil
	}

	choice, picked, err := NewPicker(cfg).Pick(ctx, options)
	if err != nil || !picked {
		return "", false, err
	}

	if cfg.CopyToClipboard {
		copyToClipboard(choice)
	}
	return choice, true, nil
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func isTTYReader(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
