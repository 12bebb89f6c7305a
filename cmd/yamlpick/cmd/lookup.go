package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/bridge"
	"github.com/Aman-CERP/yamlpick/internal/service"
)

func newLookupCmd() *cobra.Command {
	var (
		format     string
		dir        string
		socketPath string
	)

	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "Print the key paths whose value equals text",
		Long: `Print the dotted key paths whose YAML value equals text exactly, one per
line. Nothing is printed when no value matches; the exit status is still 0.

With --socket the lookup is answered by a running 'yamlpick bridge'
instead of indexing the workspace again.`,
		Example: `  yamlpick lookup "Welcome"
  yamlpick lookup "Welcome" --format json
  yamlpick lookup "Welcome" --socket ~/.yamlpick/yamlpick.sock`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], dir, format, socketPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&dir, "dir", "", "Workspace root (default: project root of the working directory)")
	cmd.Flags().StringVar(&socketPath, "socket", "", "Ask the bridge listening on this socket")

	return cmd
}

func runLookup(cmd *cobra.Command, text, dir, format, socketPath string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (use: text, json)", format)
	}

	var res service.LookupResult
	if socketPath != "" {
		client := bridge.NewClient(socketPath, bridge.DefaultTimeout)
		r, err := client.Lookup(cmd.Context(), text)
		if err != nil {
			return err
		}
		res = *r
	} else {
		root, err := resolveRoot(dir)
		if err != nil {
			return err
		}
		svc, _, err := openService(root)
		if err != nil {
			return err
		}
		if _, err := svc.Reindex(cmd.Context()); err != nil {
			return err
		}
		res = svc.Lookup(text)
	}

	return printLookup(cmd.OutOrStdout(), res, format)
}

// printLookup writes res. A text-format miss writes nothing.
func printLookup(out io.Writer, res service.LookupResult, format string) error {
	if format == "json" {
		if res.Paths == nil {
			res.Paths = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for _, p := range res.Paths {
		if _, err := fmt.Fprintln(out, p); err != nil {
			return err
		}
	}
	return nil
}
