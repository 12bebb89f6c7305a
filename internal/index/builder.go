// Package index orchestrates rebuilds of the lookup table: scan the
// workspace, read and flatten every file concurrently, merge the results in
// scan order and publish the finished table to the cache in one swap.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/yamlpick/internal/async"
	"github.com/Aman-CERP/yamlpick/internal/cache"
	"github.com/Aman-CERP/yamlpick/internal/config"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/scanner"
	"github.com/Aman-CERP/yamlpick/internal/yamlindex"
)

// ErrSuperseded is returned by a rebuild that was cancelled because a newer
// rebuild started. Its partial table is discarded.
var ErrSuperseded = errors.New("rebuild superseded")

// Skip reasons reported in SkippedFile.Reason.
const (
	ReasonRead     = "read"
	ReasonParse    = "parse"
	ReasonTooLarge = "too_large"
)

// SkippedFile is a discovered file that contributed nothing to the table.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// Result summarizes one completed rebuild.
type Result struct {
	Generation uint64        `json:"generation"`
	Files      int           `json:"files"`
	Indexed    int           `json:"indexed"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
	Values     int           `json:"values"`
	Paths      int           `json:"paths"`
	Bytes      int64         `json:"bytes"`
	Duration   time.Duration `json:"duration_ns"`
}

// BuilderConfig contains the collaborators of a Builder.
type BuilderConfig struct {
	// RootDir is the workspace root.
	RootDir string

	// Config supplies scan options and the worker count (required).
	Config *config.Config

	// Store receives each finished table (required).
	Store *cache.Store

	// Progress is updated during rebuilds. Optional.
	Progress *async.IndexProgress

	// Scanner is reused across rebuilds so gitignore matchers stay cached.
	// Optional; one is created when nil.
	Scanner *scanner.Scanner
}

// Builder runs rebuilds. Rebuilds are serialized and a newer rebuild cancels
// the one in flight, so the store only ever receives complete tables built
// from the most recent request.
type Builder struct {
	root     string
	store    *cache.Store
	progress *async.IndexProgress
	scanner  *scanner.Scanner

	cfgMu sync.RWMutex
	cfg   *config.Config

	// mu serializes rebuilds.
	mu sync.Mutex

	cancelMu sync.Mutex
	cancel   context.CancelCauseFunc
	seq      uint64
}

// NewBuilder creates a Builder.
func NewBuilder(bc BuilderConfig) (*Builder, error) {
	if bc.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if bc.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	progress := bc.Progress
	if progress == nil {
		progress = async.NewIndexProgress()
	}

	sc := bc.Scanner
	if sc == nil {
		var err error
		sc, err = scanner.New()
		if err != nil {
			return nil, err
		}
	}

	root := bc.RootDir
	if root == "" {
		root = "."
	}

	return &Builder{
		root:     root,
		store:    bc.Store,
		progress: progress,
		scanner:  sc,
		cfg:      bc.Config,
	}, nil
}

// Store returns the store the builder publishes to.
func (b *Builder) Store() *cache.Store {
	return b.store
}

// Progress returns the rebuild progress tracker.
func (b *Builder) Progress() *async.IndexProgress {
	return b.progress
}

// Root returns the workspace root.
func (b *Builder) Root() string {
	return b.root
}

// Config returns the configuration currently used for rebuilds.
func (b *Builder) Config() *config.Config {
	b.cfgMu.RLock()
	defer b.cfgMu.RUnlock()
	return b.cfg
}

// SetConfig replaces the configuration used by later rebuilds.
func (b *Builder) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	b.cfgMu.Lock()
	b.cfg = cfg
	b.cfgMu.Unlock()
}

// ScanOptions derives scanner options from the current configuration.
func (b *Builder) ScanOptions() *scanner.ScanOptions {
	return ScanOptionsFromConfig(b.root, b.Config())
}

// ScanOptionsFromConfig maps the paths and index sections onto scanner options.
func ScanOptionsFromConfig(root string, cfg *config.Config) *scanner.ScanOptions {
	return &scanner.ScanOptions{
		RootDir:          root,
		IncludePatterns:  cfg.Paths.Include,
		ExcludePatterns:  cfg.Paths.Exclude,
		RespectGitignore: cfg.Index.RespectGitignore,
		MaxFileSize:      cfg.Index.MaxFileSize,
		MaxFiles:         cfg.Index.MaxFiles,
		FollowSymlinks:   cfg.Index.FollowSymlinks,
	}
}

// InvalidateGitignore drops cached .gitignore matchers before the next rebuild.
func (b *Builder) InvalidateGitignore() {
	b.scanner.InvalidateGitignoreCache()
}

// fileSlot holds one file's contribution until the join.
type fileSlot struct {
	docs    []yamlindex.Flattened
	skipped *SkippedFile
}

// Rebuild scans the workspace, indexes every file and swaps the result into
// the store. Read and parse failures skip the file and do not fail the
// rebuild. If a newer rebuild starts before this one finishes, this one
// returns ErrSuperseded and publishes nothing.
func (b *Builder) Rebuild(ctx context.Context) (*Result, error) {
	ctx, done := b.begin(ctx)
	defer done()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.interrupted(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	b.progress.Begin()

	cfg := b.Config()
	opts := ScanOptionsFromConfig(b.root, cfg)

	ch, err := b.scanner.Scan(ctx, opts)
	if err != nil {
		b.progress.SetError(err.Error())
		return nil, err
	}

	files, scanSkipped := scanner.Collect(ch)
	if err := b.interrupted(ctx); err != nil {
		return nil, err
	}

	var skipped []SkippedFile
	for _, r := range scanSkipped {
		if r.File == nil {
			b.progress.SetError(r.Error.Error())
			return nil, r.Error
		}
		skipped = append(skipped, skippedFile(r.File.Path, r.Error))
	}

	b.progress.SetIndexing(len(files))

	slots, err := b.indexFiles(ctx, files, cfg.Index.Workers)
	if err != nil {
		return nil, err
	}

	table := yamlindex.NewTable()
	indexed := 0
	var size int64
	for i, slot := range slots {
		if slot.skipped != nil {
			skipped = append(skipped, *slot.skipped)
			continue
		}
		table.MergeAll(slot.docs)
		indexed++
		size += files[i].Size
	}

	if err := b.interrupted(ctx); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	gen := b.store.Swap(table, cache.Stats{
		FilesIndexed: indexed,
		FilesSkipped: len(skipped),
		Duration:     duration,
	})
	b.progress.SetReady(gen)

	result := &Result{
		Generation: gen,
		Files:      len(files) + len(scanSkipped),
		Indexed:    indexed,
		Skipped:    skipped,
		Values:     table.Len(),
		Paths:      table.PathCount(),
		Bytes:      size,
		Duration:   duration,
	}

	slog.Info("index rebuilt",
		slog.Uint64("generation", gen),
		slog.Int("files", result.Files),
		slog.Int("indexed", indexed),
		slog.Int("skipped", len(skipped)),
		slog.Int("values", result.Values),
		slog.Int("paths", result.Paths),
		slog.Duration("duration", duration))

	return result, nil
}

// indexFiles reads and flattens every file with at most workers in flight.
// Each file writes only its own slot, so slots keep scan order.
func (b *Builder) indexFiles(ctx context.Context, files []*scanner.FileInfo, workers int) ([]fileSlot, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slots := make([]fileSlot, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = indexFile(f)
			b.progress.FileDone(slots[i].skipped != nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, b.interrupted(ctx)
	}
	if err := b.interrupted(ctx); err != nil {
		return nil, err
	}
	return slots, nil
}

// indexFile reads and flattens one file. Failures are logged and returned as
// a skipped slot.
func indexFile(f *scanner.FileInfo) fileSlot {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		perr := pickerr.ReadError(f.Path, err)
		slog.Warn("skipping unreadable file", pickerr.FormatForLog(perr)...)
		s := skippedFile(f.Path, perr)
		return fileSlot{skipped: &s}
	}

	docs, err := yamlindex.Index(content)
	if err != nil {
		code := pickerr.ErrCodeYAMLMalformed
		if errors.Is(err, yamlindex.ErrDuplicateKey) {
			code = pickerr.ErrCodeYAMLDuplicateKey
		}
		perr := pickerr.New(code, fmt.Sprintf("cannot parse %s", f.Path), err).
			WithDetail("path", f.Path)
		slog.Warn("skipping malformed file", pickerr.FormatForLog(perr)...)
		s := skippedFile(f.Path, perr)
		return fileSlot{skipped: &s}
	}

	return fileSlot{docs: docs}
}

func skippedFile(path string, err error) SkippedFile {
	code := pickerr.GetCode(err)
	reason := ReasonRead
	switch {
	case code == pickerr.ErrCodeFileTooLarge:
		reason = ReasonTooLarge
	case pickerr.GetCategory(err) == pickerr.CategoryParse:
		reason = ReasonParse
	}
	return SkippedFile{Path: path, Reason: reason, Code: code, Error: err.Error()}
}

// begin registers a new rebuild, cancelling the one in flight.
func (b *Builder) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	b.cancelMu.Lock()
	if b.cancel != nil {
		b.cancel(ErrSuperseded)
	}
	b.seq++
	mine := b.seq
	b.cancel = cancel
	b.cancelMu.Unlock()

	return ctx, func() {
		b.cancelMu.Lock()
		if b.seq == mine {
			b.cancel = nil
		}
		b.cancelMu.Unlock()
		cancel(nil)
	}
}

// interrupted reports why ctx stopped, if it did. A superseded rebuild keeps
// the progress of its successor untouched.
func (b *Builder) interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrSuperseded) {
		slog.Debug("rebuild superseded by a newer one")
		return ErrSuperseded
	}
	b.progress.SetError(cause.Error())
	return cause
}
