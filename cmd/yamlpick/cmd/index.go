package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/ui"
	"github.com/Aman-CERP/yamlpick/internal/yamlindex"
)

func newIndexCmd() *cobra.Command {
	var (
		format string
		dump   bool
	)

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Build the lookup table once and report what was indexed",
		Long: `Scan the workspace for YAML files, flatten them into dotted key paths
and build the value lookup table. Files that cannot be read or parsed are
reported and skipped.

With --dump, every value is printed with the paths that hold it.`,
		Example: `  # Index the current project
  yamlpick index

  # Index another directory and print the table as JSON
  yamlpick index ./locales --dump --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runIndex(cmd, dir, format, dump)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&dump, "dump", false, "Print every value with its key paths")

	return cmd
}

func runIndex(cmd *cobra.Command, dir, format string, dump bool) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (use: text, json)", format)
	}

	root, err := resolveRoot(dir)
	if err != nil {
		return err
	}
	svc, _, err := openService(root)
	if err != nil {
		return err
	}

	res, err := svc.Reindex(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := svc.Builder().Store().Table()

	if dump {
		if format == "json" {
			return dumpJSON(out, table)
		}
		dumpText(out, table)
		return nil
	}

	renderer := ui.NewStatusRenderer(out, ui.DetectNoColor() || !ui.IsTTY(out))
	info := statusInfo(root, res, svc.Builder().Store().Snapshot().BuiltAt)
	if format == "json" {
		return renderer.RenderJSON(info)
	}
	return renderer.Render(info)
}

// statusInfo converts a rebuild result for the status renderer.
func statusInfo(root string, res *index.Result, builtAt time.Time) ui.StatusInfo {
	info := ui.StatusInfo{
		Root:        root,
		Status:      "ready",
		Generation:  res.Generation,
		Files:       res.Files,
		Indexed:     res.Indexed,
		Values:      res.Values,
		Paths:       res.Paths,
		Bytes:       res.Bytes,
		Duration:    res.Duration,
		LastIndexed: builtAt,
	}
	for _, sk := range res.Skipped {
		info.Skipped = append(info.Skipped, ui.SkippedInfo{Path: sk.Path, Reason: sk.Reason, Error: sk.Error})
	}
	return info
}

// dumpEntry is one value of the table in first-seen order.
type dumpEntry struct {
	Value string   `json:"value"`
	Paths []string `json:"paths"`
}

func dumpJSON(out io.Writer, table *yamlindex.Table) error {
	entries := make([]dumpEntry, 0, table.Len())
	for _, v := range table.Values() {
		paths, _ := table.Lookup(v)
		entries = append(entries, dumpEntry{Value: v, Paths: paths})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func dumpText(out io.Writer, table *yamlindex.Table) {
	for _, v := range table.Values() {
		paths, _ := table.Lookup(v)
		_, _ = fmt.Fprintf(out, "%q\n", v)
		for _, p := range paths {
			_, _ = fmt.Fprintf(out, "  %s\n", p)
		}
	}
}
