package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollingWatcher detects changes by periodically walking the root and
// comparing size and modification time. It is the fallback when fsnotify
// is unavailable and the only mode when polling is forced.
type PollingWatcher struct {
	interval  time.Duration
	skipDir   func(relPath string) bool
	fileState map[string]fileSnapshot
	events    chan Event
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
	rootPath  string
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

// NewPollingWatcher creates a new polling watcher with the given interval.
func NewPollingWatcher(interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		interval:  interval,
		skipDir:   func(rel string) bool { return filepath.Base(rel) == ".git" },
		fileState: make(map[string]fileSnapshot),
		events:    make(chan Event, 1000),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}
}

// Start records a baseline and then polls until Stop or ctx cancellation.
func (p *PollingWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root is not a directory: %s", absPath)
	}

	p.mu.Lock()
	p.rootPath = absPath
	p.fileState = p.walk()
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Stop stops the polling watcher.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}

	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan Event {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}

// walk records the state of every entry under the root, keyed by
// slash-separated relative path. Must be called with mu held.
func (p *PollingWatcher) walk() map[string]fileSnapshot {
	state := make(map[string]fileSnapshot)
	_ = filepath.WalkDir(p.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != p.rootPath {
				p.emitError(fmt.Errorf("poll %s: %w", path, err))
			}
			return nil
		}

		relPath, err := filepath.Rel(p.rootPath, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() && p.skipDir(relPath) {
			return filepath.SkipDir
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[relPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
			isDir:   d.IsDir(),
		}
		return nil
	})
	return state
}

// detectChanges compares the current tree with the last walk and emits
// events for every difference.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	now := time.Now()
	current := p.walk()

	for path, snap := range current {
		prev, existed := p.fileState[path]
		switch {
		case !existed:
			p.emitEvent(Event{Path: path, Operation: OpCreate, IsDir: snap.isDir, Timestamp: now})
		case !snap.isDir && (!prev.modTime.Equal(snap.modTime) || prev.size != snap.size):
			p.emitEvent(Event{Path: path, Operation: OpModify, Timestamp: now})
		}
	}
	for path, snap := range p.fileState {
		if _, exists := current[path]; !exists {
			p.emitEvent(Event{Path: path, Operation: OpDelete, IsDir: snap.isDir, Timestamp: now})
		}
	}

	p.fileState = current
}

// emitEvent sends an event without blocking. Must be called with mu held.
func (p *PollingWatcher) emitEvent(event Event) {
	if p.stopped {
		return
	}

	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()))
	}
}

// emitError sends a non-fatal error without blocking. Must be called with mu held.
func (p *PollingWatcher) emitError(err error) {
	if p.stopped {
		return
	}
	select {
	case p.errors <- err:
	default:
	}
}
