package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestIsTTY_WithRegularFile_ReturnsFalse(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, IsTTY(f))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestNewPickConfig_Defaults(t *testing.T) {
	cfg := NewPickConfig(strings.NewReader(""), &bytes.Buffer{})

	assert.Equal(t, DefaultPlaceholder, cfg.Placeholder)
	assert.False(t, cfg.ForcePlain)
	assert.False(t, cfg.CopyToClipboard)
}

func TestNewPickConfig_Options(t *testing.T) {
	cfg := NewPickConfig(nil, nil,
		WithForcePlain(true),
		WithNoColor(true),
		WithPlaceholder("pick a key"),
		WithClipboard(true))

	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "pick a key", cfg.Placeholder)
	assert.True(t, cfg.CopyToClipboard)

	// An empty placeholder keeps the default
	cfg = NewPickConfig(nil, nil, WithPlaceholder(""))
	assert.Equal(t, DefaultPlaceholder, cfg.Placeholder)
}

func TestNewPicker_NonTTY_ReturnsPlain(t *testing.T) {
	p := NewPicker(NewPickConfig(strings.NewReader(""), &bytes.Buffer{}))

	_, ok := p.(*PlainPicker)
	assert.True(t, ok)
}

func TestPick_EmptyOptions_ShowsNothing(t *testing.T) {
	// Given: a lookup miss
	out := &bytes.Buffer{}
	cfg := NewPickConfig(strings.NewReader("1\n"), out)

	// When: picking from no options
	choice, picked, err := Pick(context.Background(), cfg, nil)

	// Then: no picker is shown and nothing is picked
	require.NoError(t, err)
	assert.False(t, picked)
	assert.Empty(t, choice)
	assert.Empty(t, out.String())
}

func TestPick_PlainChoice(t *testing.T) {
	out := &bytes.Buffer{}
	cfg := NewPickConfig(strings.NewReader("2\n"), out)

	choice, picked, err := Pick(context.Background(), cfg, []string{"en.title", "home.title"})

	require.NoError(t, err)
	assert.True(t, picked)
	assert.Equal(t, "home.title", choice)
}

func TestPick_CopiesToClipboard(t *testing.T) {
	// Given: a stubbed clipboard
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	defer func() { writeClipboard = orig }()

	cfg := NewPickConfig(strings.NewReader("1\n"), &bytes.Buffer{}, WithClipboard(true))

	// When: a path is picked
	choice, picked, err := Pick(context.Background(), cfg, []string{"a.b"})

	// Then: it is also on the clipboard (unless the platform has none)
	require.NoError(t, err)
	require.True(t, picked)
	assert.Equal(t, "a.b", choice)
	if copied != "" {
		assert.Equal(t, "a.b", copied)
	}
}

func TestPick_ClipboardFailureDoesNotFailPick(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no display") }
	defer func() { writeClipboard = orig }()

	cfg := NewPickConfig(strings.NewReader("1\n"), &bytes.Buffer{}, WithClipboard(true))

	choice, picked, err := Pick(context.Background(), cfg, []string{"a.b"})

	require.NoError(t, err)
	assert.True(t, picked)
	assert.Equal(t, "a.b", choice)
}

func TestPick_CancelledCopiesNothing(t *testing.T) {
	called := false
	orig := writeClipboard
	writeClipboard = func(string) error {
		called = true
		return nil
	}
	defer func() { writeClipboard = orig }()

	cfg := NewPickConfig(strings.NewReader("\n"), &bytes.Buffer{}, WithClipboard(true))

	_, picked, err := Pick(context.Background(), cfg, []string{"a.b"})

	require.NoError(t, err)
	assert.False(t, picked)
	assert.False(t, called)
}
