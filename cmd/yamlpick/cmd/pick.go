package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/yamlpick/internal/config"
	"github.com/Aman-CERP/yamlpick/internal/edit"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/output"
	"github.com/Aman-CERP/yamlpick/internal/service"
	"github.com/Aman-CERP/yamlpick/internal/ui"
)

type pickOptions struct {
	file    string
	dir     string
	offset  int
	line    int
	col     int
	length  int
	text    string
	plain   bool
	print   bool
	noColor bool
}

func newPickCmd() *cobra.Command {
	var opts pickOptions

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Replace a selection with a key path chosen from a list",
		Long: `Look up the selected text among the YAML values of the workspace, show
the key paths that hold it, and replace the selection in the file with the
chosen path.

The selection is given either as a byte range (--offset, --length) or as a
1-based line and column (--line, --col) plus --length. When --text is given
it must match the file at that range, otherwise the file is left alone.

If no YAML value matches, nothing is shown and the file is not touched.`,
		Example: `  # Bind this to a key in your editor
  yamlpick pick --file src/App.vue --line 12 --col 9 --length 7

  # Only print the chosen path
  yamlpick pick --file src/App.vue --offset 230 --text "Welcome" --print`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPick(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "File containing the selection (required)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Workspace root (default: project root of the file)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Byte offset of the selection start")
	cmd.Flags().IntVar(&opts.line, "line", 0, "1-based line of the selection start")
	cmd.Flags().IntVar(&opts.col, "col", 0, "1-based column of the selection start")
	cmd.Flags().IntVar(&opts.length, "length", 0, "Selection length in bytes (default: length of --text)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Selected text, verified against the file")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Use a numbered prompt instead of the interactive list")
	cmd.Flags().BoolVar(&opts.print, "print", false, "Print the chosen path instead of editing the file")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colors in the picker")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPick(cmd *cobra.Command, opts pickOptions) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	file, err := filepath.Abs(opts.file)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.file, err)
	}

	root := opts.dir
	if root == "" {
		root, err = config.FindProjectRoot(filepath.Dir(file))
		if err != nil {
			return err
		}
	} else if root, err = resolveRoot(root); err != nil {
		return err
	}

	selected, err := selectedText(file, opts)
	if err != nil {
		return err
	}

	svc, cfg, err := openService(root)
	if err != nil {
		return err
	}
	if _, err := svc.Reindex(ctx); err != nil {
		return err
	}

	res := svc.Lookup(selected)
	if !res.Found {
		slog.Debug("no yaml value matches selection", slog.String("text", selected))
		return nil
	}

	pickCfg := ui.NewPickConfig(cmd.InOrStdin(), cmd.ErrOrStderr(),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(opts.noColor),
		ui.WithPlaceholder(cfg.Picker.Placeholder),
		ui.WithClipboard(cfg.Picker.CopyToClipboard),
	)
	choice, picked, err := ui.Pick(ctx, pickCfg, res.Paths)
	if err != nil {
		return err
	}
	if !picked {
		return nil
	}

	if opts.print {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), choice)
		return err
	}

	result, err := svc.Replace(service.ReplaceRequest{
		File:   file,
		Offset: opts.offset,
		Line:   opts.line,
		Col:    opts.col,
		Length: len(selected),
		Text:   selected,
		Path:   choice,
	})
	if err != nil {
		return err
	}

	output.New(cmd.ErrOrStderr()).Successf("Replaced %q with %s", result.Replaced, result.Inserted)
	return nil
}

// selectedText returns --text, or the bytes of the file at the given range.
func selectedText(file string, opts pickOptions) (string, error) {
	if opts.text != "" {
		if opts.length > 0 && opts.length != len(opts.text) {
			return "", pickerr.ValidationError(
				fmt.Sprintf("--length %d does not match --text of %d bytes", opts.length, len(opts.text)), nil)
		}
		return opts.text, nil
	}
	if opts.length <= 0 {
		return "", pickerr.New(pickerr.ErrCodeSelectionEmpty, "selection is empty", nil).
			WithSuggestion("Pass --length or --text")
	}
	if (opts.line > 0) != (opts.col > 0) {
		return "", pickerr.ValidationError("--line and --col must be given together", nil)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return "", pickerr.ReadError(file, err)
	}

	offset := opts.offset
	if opts.line > 0 {
		if offset, err = edit.ResolveLineCol(content, opts.line, opts.col); err != nil {
			return "", err
		}
	}
	if offset < 0 || offset+opts.length > len(content) {
		return "", pickerr.New(pickerr.ErrCodeInvalidRange,
			fmt.Sprintf("range %d+%d is outside %s", offset, opts.length, file), nil)
	}
	return string(content[offset : offset+opts.length]), nil
}
