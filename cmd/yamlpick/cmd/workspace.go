package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Aman-CERP/yamlpick/internal/async"
	"github.com/Aman-CERP/yamlpick/internal/config"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/service"
	"github.com/Aman-CERP/yamlpick/internal/watcher"
)

// resolveRoot returns the workspace root. An explicit dir is used as is;
// otherwise the project root above the working directory is used.
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return config.FindProjectRoot(cwd)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", pickerr.New(pickerr.ErrCodeRootNotFound, fmt.Sprintf("workspace root %s is not a directory", abs), err).
			WithDetail("path", abs)
	}
	return abs, nil
}

// openService loads the configuration for root and wires a Service.
func openService(root string) (*service.Service, *config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, pickerr.ConfigError("failed to load configuration", err).
			WithSuggestion("Run 'yamlpick config show --source project' to inspect the project file")
	}

	svc, err := service.NewForRoot(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// startBackgroundIndex builds the first table without blocking the caller.
func startBackgroundIndex(ctx context.Context, svc *service.Service) *async.BackgroundIndexer {
	indexer := async.NewBackgroundIndexer(svc.Builder().Progress(), func(ctx context.Context, _ *async.IndexProgress) error {
		res, err := svc.Reindex(ctx)
		if err != nil {
			return err
		}
		logRebuild(res, nil)
		return nil
	})
	indexer.Start(ctx)
	return indexer
}

// startWatching keeps the table of svc fresh until ctx is cancelled or the
// returned stop function is called.
func startWatching(ctx context.Context, svc *service.Service, onResult func(*index.Result, error)) (func(), error) {
	b := svc.Builder()
	cfg := b.Config()

	w, err := watcher.NewHybridWatcher(watcher.Options{
		DebounceWindow: cfg.DebounceDuration(),
		PollInterval:   cfg.PollIntervalDuration(),
		ForcePolling:   cfg.Watch.ForcePolling,
		IgnorePatterns: cfg.Paths.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := w.Start(ctx, b.Root()); err != nil && ctx.Err() == nil {
			slog.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()
	go func() {
		defer wg.Done()
		_ = b.Watch(ctx, w.Events(), onResult)
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				slog.Warn("watcher error", slog.String("error", err.Error()))
			}
		}
	}()

	svc.SetWatching(true)
	slog.Info("watching workspace",
		slog.String("root", b.Root()),
		slog.String("watcher", w.WatcherType()))

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = w.Stop()
			wg.Wait()
			svc.SetWatching(false)
		})
	}, nil
}

// logRebuild records the outcome of a rebuild.
func logRebuild(res *index.Result, err error) {
	if err != nil {
		slog.Warn("rebuild failed", slog.String("error", err.Error()))
		return
	}
	slog.Info("rebuild complete",
		slog.Uint64("generation", res.Generation),
		slog.Int("indexed", res.Indexed),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("values", res.Values),
		slog.Duration("duration", res.Duration))
}
