// Package edit substitutes a picked key path for the selected text in a file.
//
// Offsets and lengths are byte based. ResolveLineCol converts the 1-based
// line and column an editor reports into a byte offset; columns count
// characters, not bytes.
package edit

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
)

// DefaultLockTimeout bounds how long ReplaceInFile waits for another
// process editing the same file.
const DefaultLockTimeout = 2 * time.Second

// Selection is a byte range in a file, optionally with the text the caller
// believes it holds.
type Selection struct {
	File   string `json:"file"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Text   string `json:"text,omitempty"`
}

// Result describes an applied replacement.
type Result struct {
	File     string `json:"file"`
	Offset   int    `json:"offset"`
	Replaced string `json:"replaced"`
	Inserted string `json:"inserted"`
	Size     int    `json:"size"`
}

// Normalize fills Length from Text when only Text is given.
func (s Selection) Normalize() Selection {
	if s.Length == 0 && s.Text != "" {
		s.Length = len(s.Text)
	}
	return s
}

// ReplaceString returns content with the selected range replaced. When
// sel.Text is set, the range must hold exactly that text.
func ReplaceString(content []byte, sel Selection, replacement string) ([]byte, string, error) {
	sel = sel.Normalize()

	if sel.Length <= 0 {
		return nil, "", pickerr.New(pickerr.ErrCodeSelectionEmpty, "selection is empty", nil)
	}
	if sel.Offset < 0 || sel.Offset+sel.Length > len(content) {
		return nil, "", pickerr.New(pickerr.ErrCodeInvalidRange,
			fmt.Sprintf("range %d+%d is outside content of %d bytes", sel.Offset, sel.Length, len(content)), nil).
			WithDetail("offset", strconv.Itoa(sel.Offset)).
			WithDetail("length", strconv.Itoa(sel.Length))
	}

	current := content[sel.Offset : sel.Offset+sel.Length]
	if sel.Text != "" && !bytes.Equal(current, []byte(sel.Text)) {
		return nil, "", pickerr.New(pickerr.ErrCodeSelectionMismatch,
			fmt.Sprintf("selection %q does not match file content %q", sel.Text, current), nil).
			WithSuggestion("The file changed since the selection was made; select the text again.")
	}

	out := make([]byte, 0, len(content)-sel.Length+len(replacement))
	out = append(out, content[:sel.Offset]...)
	out = append(out, replacement...)
	out = append(out, content[sel.Offset+sel.Length:]...)
	return out, string(current), nil
}

// ResolveLineCol returns the byte offset of a 1-based line and column. A
// column one past the last character of a line addresses the line end.
func ResolveLineCol(content []byte, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, pickerr.New(pickerr.ErrCodeInvalidRange,
			fmt.Sprintf("line %d column %d: positions are 1-based", line, col), nil)
	}

	offset := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(content[offset:], '\n')
		if i < 0 {
			return 0, pickerr.New(pickerr.ErrCodeInvalidRange,
				fmt.Sprintf("line %d is past the end of the file", line), nil)
		}
		offset += i + 1
	}

	lineEnd := len(content)
	if i := bytes.IndexByte(content[offset:], '\n'); i >= 0 {
		lineEnd = offset + i
	}
	text := bytes.TrimSuffix(content[offset:lineEnd], []byte("\r"))

	pos := 0
	for c := 1; c < col; c++ {
		if pos >= len(text) {
			return 0, pickerr.New(pickerr.ErrCodeInvalidRange,
				fmt.Sprintf("column %d is past the end of line %d", col, line), nil)
		}
		_, size := utf8.DecodeRune(text[pos:])
		pos += size
	}
	return offset + pos, nil
}

// Options tune ReplaceInFile.
type Options struct {
	// LockTimeout bounds the wait for a concurrent editor. Zero uses
	// DefaultLockTimeout.
	LockTimeout time.Duration
}

// ReplaceInFile replaces the selection in sel.File and writes the file back
// atomically, keeping its permissions.
func ReplaceInFile(sel Selection, replacement string) (*Result, error) {
	return ReplaceInFileWithOptions(sel, replacement, Options{})
}

// ReplaceInFileWithOptions is ReplaceInFile with explicit options.
func ReplaceInFileWithOptions(sel Selection, replacement string, opts Options) (*Result, error) {
	if sel.File == "" {
		return nil, pickerr.ValidationError("file is required", nil)
	}
	if replacement == "" {
		return nil, pickerr.ValidationError("replacement is empty", nil)
	}

	timeout := opts.LockTimeout
	if timeout == 0 {
		timeout = DefaultLockTimeout
	}

	// A symlinked document is edited at its target, the link stays.
	target, err := filepath.EvalSymlinks(sel.File)
	if err != nil {
		return nil, pickerr.ReadError(sel.File, err)
	}

	lock, err := NewFileLock(target)
	if err != nil {
		return nil, pickerr.WriteError(target, err)
	}
	ok, err := lock.Lock(timeout)
	if err != nil {
		return nil, pickerr.WriteError(target, err)
	}
	if !ok {
		return nil, pickerr.New(pickerr.ErrCodeFileLocked,
			fmt.Sprintf("%s is being edited by another process", target), nil).
			WithDetail("path", target)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release edit lock",
				slog.String("path", lock.Path()),
				slog.String("error", err.Error()))
		}
	}()

	info, err := os.Stat(target)
	if err != nil {
		return nil, pickerr.ReadError(target, err)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		return nil, pickerr.ReadError(target, err)
	}

	updated, replaced, err := ReplaceString(content, sel, replacement)
	if err != nil {
		if pe, ok := pickerr.As(err); ok {
			pe.WithDetail("path", target)
		}
		return nil, err
	}

	if err := writeAtomic(target, updated, info.Mode().Perm()); err != nil {
		return nil, pickerr.WriteError(target, err)
	}

	slog.Info("selection replaced",
		slog.String("file", sel.File),
		slog.Int("offset", sel.Offset),
		slog.String("replaced", replaced),
		slog.String("inserted", replacement))

	return &Result{
		File:     sel.File,
		Offset:   sel.Offset,
		Replaced: replaced,
		Inserted: replacement,
		Size:     len(updated),
	}, nil
}

// writeAtomic writes data to a temp file next to path and renames it over
// path.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
