// Package cmd provides the CLI commands for yamlpick.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/config"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/logging"
	"github.com/Aman-CERP/yamlpick/pkg/version"
)

// Global flags
var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the yamlpick CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yamlpick",
		Short: "Replace selected text with the YAML key path that holds it",
		Long: `yamlpick indexes the YAML files of a workspace, maps every leaf value to
the dotted key paths that hold it, and lets you swap a hard-coded string
in your source for one of those paths.

Editors drive it through 'yamlpick pick', the 'yamlpick bridge' JSON-RPC
protocol, or the MCP server started by 'yamlpick serve'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("yamlpick version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.yamlpick/logs/")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the user config.yaml")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newPickCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newBridgeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging applies --config-dir and installs the logger. Without --debug
// only warnings reach stderr.
func startLogging(_ *cobra.Command, _ []string) error {
	if configDir != "" {
		if err := os.Setenv(config.ConfigDirEnv, configDir); err != nil {
			return fmt.Errorf("failed to apply --config-dir: %w", err)
		}
	}

	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	cleanup, err := logging.Install(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup

	if debugMode {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

// useProtocolLogging sends logs to the log file only. Commands that speak a
// protocol on stdio call it before serving.
func useProtocolLogging(level string) error {
	if debugMode {
		level = "debug"
	}
	cleanup, err := logging.Install(logging.ProtocolConfig(level))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	previous := loggingCleanup
	loggingCleanup = func() {
		cleanup()
		if previous != nil {
			previous()
		}
	}
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Debug("Logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints a formatted error on failure.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, pickerr.FormatForCLI(err))
	}
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
