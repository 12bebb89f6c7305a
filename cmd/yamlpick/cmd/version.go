package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show which yamlpick build is running",
		Long: `Show the yamlpick release, the commit it was built from, the build time
and the Go toolchain. Binaries built without release flags fall back to the
VCS stamps Go embeds, so a 'go install' build still names its commit.

Editor plugins can use --short to check compatibility with the bridge.`,
		Example: `  yamlpick version
  yamlpick version --short
  yamlpick version --json | jq .commit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(out, version.Short())
				return err
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetInfo())
			default:
				_, err := fmt.Fprintln(out, version.String())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Print only the release")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}
