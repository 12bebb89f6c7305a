package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var (
		dir     string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server on stdin/stdout. AI clients get
the lookup_value, replace_selection, index_status and reindex tools plus
the yamlpick://table and yamlpick://status resources.

Logs never go to stdout; run with --debug and read them with 'yamlpick logs'.`,
		Example: `  # Register with an MCP client
  {"command": "yamlpick", "args": ["serve"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, dir, noWatch)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Workspace root (default: project root of the working directory)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch files; use the reindex tool to refresh")

	return cmd
}

func runServe(cmd *cobra.Command, dir string, noWatch bool) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	root, err := resolveRoot(dir)
	if err != nil {
		return err
	}
	svc, cfg, err := openService(root)
	if err != nil {
		return err
	}
	if err := useProtocolLogging(cfg.Server.LogLevel); err != nil {
		return err
	}

	indexer := startBackgroundIndex(ctx, svc)
	defer indexer.Stop()

	if !noWatch {
		stop, err := startWatching(ctx, svc, logRebuild)
		if err != nil {
			return err
		}
		defer stop()
	}

	srv, err := mcp.NewServer(svc)
	if err != nil {
		return err
	}

	err = srv.Serve(ctx, "stdio")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
