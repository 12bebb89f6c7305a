// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
}

// New creates a Writer without color.
func New(out io.Writer) *Writer {
	return NewWithColor(out, false)
}

// NewWithColor creates a Writer that colors icons and labels when color is true.
func NewWithColor(out io.Writer, color bool) *Writer {
	w := &Writer{
		out:     out,
		success: lipgloss.NewStyle(),
		warning: lipgloss.NewStyle(),
		failure: lipgloss.NewStyle(),
		label:   lipgloss.NewStyle(),
		value:   lipgloss.NewStyle(),
	}
	if color {
		w.success = w.success.Foreground(lipgloss.Color("154"))
		w.warning = w.warning.Foreground(lipgloss.Color("220"))
		w.failure = w.failure.Foreground(lipgloss.Color("196"))
		w.label = w.label.Foreground(lipgloss.Color("245"))
		w.value = w.value.Bold(true)
	}
	return w
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.failure.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Field prints "label: value" with the label padded to width.
func (w *Writer) Field(label string, width int, value any) {
	pad := width - len(label)
	if pad < 0 {
		pad = 0
	}
	_, _ = fmt.Fprintf(w.out, "%s%s %s\n",
		w.label.Render(label+":"), strings.Repeat(" ", pad), w.value.Render(fmt.Sprint(value)))
}

// List prints items one per line, numbered from 1.
func (w *Writer) List(items []string) {
	for i, item := range items {
		_, _ = fmt.Fprintf(w.out, "%3d. %s\n", i+1, item)
	}
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
