package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SkippedInfo is one file that contributed nothing to the table.
type SkippedInfo struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// StatusInfo summarizes the lookup table.
type StatusInfo struct {
	Root        string        `json:"root"`
	Status      string        `json:"status"`
	Generation  uint64        `json:"generation"`
	Files       int           `json:"files"`
	Indexed     int           `json:"indexed"`
	Skipped     []SkippedInfo `json:"skipped,omitempty"`
	Values      int           `json:"values"`
	Paths       int           `json:"paths"`
	Bytes       int64         `json:"bytes"`
	Duration    time.Duration `json:"duration_ns"`
	LastIndexed time.Time     `json:"last_indexed"`

	WatcherStatus string `json:"watcher_status,omitempty"` // "running", "stopped", "n/a"
	Error         string `json:"error,omitempty"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	title := "yamlpick index"
	if info.Root != "" {
		title += ": " + info.Root
	}
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(title))

	if info.Status != "" {
		_, _ = fmt.Fprintf(r.out, "  Status:       %s\n", r.renderStatus(info.Status))
	}
	_, _ = fmt.Fprintf(r.out, "  Files:        %d (%d indexed, %d skipped)\n",
		info.Files, info.Indexed, len(info.Skipped))
	_, _ = fmt.Fprintf(r.out, "  Values:       %d\n", info.Values)
	_, _ = fmt.Fprintf(r.out, "  Paths:        %d\n", info.Paths)
	_, _ = fmt.Fprintf(r.out, "  Size:         %s\n", FormatBytes(info.Bytes))
	if info.Generation > 0 {
		_, _ = fmt.Fprintf(r.out, "  Generation:   %d\n", info.Generation)
	}
	if info.Duration > 0 {
		_, _ = fmt.Fprintf(r.out, "  Took:         %s\n", info.Duration.Round(time.Millisecond))
	}
	if !info.LastIndexed.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last indexed: %s\n", formatTime(info.LastIndexed))
	}
	if info.WatcherStatus != "" && info.WatcherStatus != "n/a" {
		_, _ = fmt.Fprintf(r.out, "  Watcher:      %s\n", r.renderStatus(info.WatcherStatus))
	}
	if info.Error != "" {
		_, _ = fmt.Fprintf(r.out, "  Error:        %s\n", r.styles.Error.Render(info.Error))
	}

	if len(info.Skipped) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, r.styles.Warning.Render("  Skipped:"))
		for _, s := range info.Skipped {
			_, _ = fmt.Fprintf(r.out, "    %s %s\n",
				s.Path, r.styles.Dim.Render("("+s.Reason+")"))
		}
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "scanning", "indexing", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
