package index

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"sync"

	"github.com/Aman-CERP/yamlpick/internal/config"
	"github.com/Aman-CERP/yamlpick/internal/scanner"
	"github.com/Aman-CERP/yamlpick/internal/watcher"
)

// Watch consumes debounced event batches and triggers a full rebuild for
// every batch that can change the table. It returns when events is closed
// or ctx is cancelled, after in-flight rebuilds have finished. onResult, if
// non-nil, is called after each rebuild that was not superseded.
func (b *Builder) Watch(ctx context.Context, events <-chan []watcher.Event, onResult func(*Result, error)) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-events:
			if !ok {
				return nil
			}
			if !b.HandleBatch(batch) {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := b.Rebuild(ctx)
				if errors.Is(err, ErrSuperseded) {
					return
				}
				if err != nil {
					slog.Warn("rebuild failed", slog.String("error", err.Error()))
				}
				if onResult != nil {
					onResult(res, err)
				}
			}()
		}
	}
}

// HandleBatch applies the side effects of a batch (gitignore cache
// invalidation, config reload) and reports whether it needs a rebuild.
func (b *Builder) HandleBatch(batch []watcher.Event) bool {
	opts := b.ScanOptions()
	rebuild := false

	for _, ev := range batch {
		slog.Debug("file event",
			slog.String("path", ev.Path),
			slog.String("operation", ev.Operation.String()))

		switch ev.Operation {
		case watcher.OpGitignoreChange:
			b.InvalidateGitignore()
			rebuild = true
		case watcher.OpConfigChange:
			b.reloadConfig()
			opts = b.ScanOptions()
			rebuild = true
		default:
			if relevant(ev, opts) {
				rebuild = true
			}
		}
	}
	return rebuild
}

// relevant reports whether one event can change the table.
func relevant(ev watcher.Event, opts *scanner.ScanOptions) bool {
	if ev.IsDir {
		return ev.Operation != watcher.OpModify
	}
	if scanner.Matches(ev.Path, opts) {
		return true
	}
	// A removed directory is reported without IsDir since it can no longer
	// be inspected.
	if ev.Operation == watcher.OpDelete || ev.Operation == watcher.OpRename {
		return path.Ext(ev.Path) == ""
	}
	return false
}

// reloadConfig re-reads the project configuration. An invalid file keeps
// the previous configuration in service.
func (b *Builder) reloadConfig() {
	cfg, err := config.Load(b.root)
	if err != nil {
		slog.Warn("config change ignored, keeping previous configuration",
			slog.String("error", err.Error()))
		return
	}
	b.SetConfig(cfg)
	b.InvalidateGitignore()
	slog.Info("configuration reloaded", slog.Any("sources", cfg.Sources))
}
