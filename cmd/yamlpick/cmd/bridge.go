package cmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/bridge"
)

func newBridgeCmd() *cobra.Command {
	var (
		dir        string
		socketPath string
		noWatch    bool
	)

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Answer editor selection events over line-delimited JSON-RPC",
		Long: `Serve the editor bridge protocol: one JSON-RPC 2.0 request per line,
one response per line. Methods: ping, status, lookup, replace, reindex.

By default the bridge speaks on stdin/stdout. With --socket, or when
server.transport is "unix", it listens on a Unix socket instead and serves
any number of editors. The table is built in the background and kept fresh
by a file watcher unless --no-watch is given.

Logs never go to stdout; run with --debug and read them with 'yamlpick logs'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd, dir, socketPath, noWatch)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Workspace root (default: project root of the working directory)")
	cmd.Flags().StringVar(&socketPath, "socket", "", "Listen on this Unix socket instead of stdio")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch files; use the reindex method to refresh")

	return cmd
}

func runBridge(cmd *cobra.Command, dir, socketPath string, noWatch bool) error {
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

	srv := bridge.NewServer(svc)
	if socketPath == "" && strings.EqualFold(cfg.Server.Transport, "unix") {
		socketPath = cfg.Server.SocketPath
	}

	if socketPath != "" {
		err = srv.ListenAndServe(ctx, socketPath)
	} else {
		slog.Info("bridge serving stdio", slog.String("root", root))
		err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
