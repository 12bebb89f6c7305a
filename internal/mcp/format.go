package mcp

import (
	"fmt"
	"strings"
)

// FormatLookup formats a lookup answer as markdown.
func FormatLookup(out LookupOutput) string {
	if !out.Found {
		return fmt.Sprintf("No key path holds \"%s\"", out.Text)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Key paths for \"%s\"\n\n", out.Text))
	sb.WriteString(fmt.Sprintf("Found %d path", len(out.Paths)))
	if len(out.Paths) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, p := range out.Paths {
		sb.WriteString(fmt.Sprintf("%d. `%s`\n", i+1, p))
	}
	return sb.String()
}

// FormatReplace formats an applied replacement as markdown.
func FormatReplace(out ReplaceOutput) string {
	return fmt.Sprintf("Replaced \"%s\" with `%s` in %s at byte %d.",
		out.Replaced, out.Inserted, out.File, out.Offset)
}

// FormatReindex formats a rebuild summary as markdown.
func FormatReindex(out ReindexOutput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Reindexed (generation %d)\n\n", out.Generation))
	sb.WriteString(fmt.Sprintf("- **Files:** %d (%d indexed, %d skipped)\n", out.Files, out.Indexed, len(out.Skipped)))
	sb.WriteString(fmt.Sprintf("- **Values:** %d\n", out.Values))
	sb.WriteString(fmt.Sprintf("- **Paths:** %d\n", out.Paths))
	sb.WriteString(fmt.Sprintf("- **Duration:** %dms\n", out.DurationMS))

	if len(out.Skipped) > 0 {
		sb.WriteString("\n### Skipped\n\n")
		for _, sk := range out.Skipped {
			sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", sk.Path, sk.Reason, sk.Error))
		}
	}
	return sb.String()
}
