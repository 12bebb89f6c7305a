package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/output"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild the lookup table whenever YAML files change",
		Long: `Build the lookup table, then watch the workspace and rebuild it whenever a
YAML file, a .gitignore or the project config changes. Each rebuild is
reported on stderr. Stop with Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	root, err := resolveRoot(dir)
	if err != nil {
		return err
	}
	svc, _, err := openService(root)
	if err != nil {
		return err
	}

	out := output.New(cmd.ErrOrStderr())
	report := func(res *index.Result, err error) {
		logRebuild(res, err)
		if err != nil {
			out.Errorf("rebuild failed: %v", err)
			return
		}
		out.Successf("generation %d: %d values from %d files (%d skipped) in %s",
			res.Generation, res.Values, res.Indexed, len(res.Skipped), res.Duration)
	}

	report(svc.Reindex(ctx))

	stop, err := startWatching(ctx, svc, report)
	if err != nil {
		return err
	}
	defer stop()

	out.Statusf("→", "watching %s (Ctrl+C to stop)", root)
	<-ctx.Done()
	out.Status("", "stopped")
	return nil
}
