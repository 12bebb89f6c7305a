// Package service implements the operations the editor integrations share:
// lookup of a selection, replacement of a selection with a picked path,
// reindexing and status. The bridge and the MCP server are thin transports
// over a Service.
package service

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/yamlpick/internal/async"
	"github.com/Aman-CERP/yamlpick/internal/cache"
	"github.com/Aman-CERP/yamlpick/internal/config"
	"github.com/Aman-CERP/yamlpick/internal/edit"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/index"
)

// LookupResult answers a selection query. A miss is not an error.
type LookupResult struct {
	Found      bool     `json:"found"`
	Paths      []string `json:"paths"`
	Generation uint64   `json:"generation"`
}

// ReplaceRequest asks to substitute Path for the selected text. The range is
// either Offset/Length (bytes) or Line/Col (1-based) plus Length.
type ReplaceRequest struct {
	File   string `json:"file"`
	Offset int    `json:"offset,omitempty"`
	Line   int    `json:"line,omitempty"`
	Col    int    `json:"col,omitempty"`
	Length int    `json:"length,omitempty"`
	Text   string `json:"text,omitempty"`
	Path   string `json:"path"`
}

// Validate checks required fields.
func (r ReplaceRequest) Validate() error {
	if r.File == "" {
		return pickerr.ValidationError("file is required", nil)
	}
	if r.Path == "" {
		return pickerr.ValidationError("path is required", nil)
	}
	if r.Length <= 0 && r.Text == "" {
		return pickerr.New(pickerr.ErrCodeSelectionEmpty, "selection is empty", nil)
	}
	if (r.Line > 0) != (r.Col > 0) {
		return pickerr.ValidationError("line and col must be given together", nil)
	}
	return nil
}

// Status describes the running process and its table.
type Status struct {
	Running  bool                        `json:"running"`
	PID      int                         `json:"pid"`
	Uptime   string                      `json:"uptime"`
	Root     string                      `json:"root"`
	Watching bool                        `json:"watching"`
	Index    async.IndexProgressSnapshot `json:"index"`
	Table    cache.Snapshot              `json:"table"`
}

// Service answers editor requests against one workspace.
type Service struct {
	builder  *index.Builder
	started  time.Time
	watching atomic.Bool
}

// New creates a Service backed by b.
func New(b *index.Builder) *Service {
	return &Service{
		builder: b,
		started: time.Now(),
	}
}

// NewForRoot wires a fresh store, progress tracker and builder for root.
func NewForRoot(root string, cfg *config.Config) (*Service, error) {
	b, err := index.NewBuilder(index.BuilderConfig{
		RootDir:  root,
		Config:   cfg,
		Store:    cache.New(),
		Progress: async.NewIndexProgress(),
	})
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// Builder returns the underlying rebuild orchestrator.
func (s *Service) Builder() *index.Builder {
	return s.builder
}

// SetWatching records whether a watcher keeps the table fresh.
func (s *Service) SetWatching(on bool) {
	s.watching.Store(on)
}

// Lookup returns the paths whose value equals text exactly.
func (s *Service) Lookup(text string) LookupResult {
	store := s.builder.Store()
	paths, ok := store.Lookup(text)
	if paths == nil {
		paths = []string{}
	}
	return LookupResult{
		Found:      ok,
		Paths:      paths,
		Generation: store.Generation(),
	}
}

// Replace substitutes req.Path for the selection in req.File. Relative
// files are resolved against the workspace root.
func (s *Service) Replace(req ReplaceRequest) (*edit.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	file := req.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(s.builder.Root(), file)
	}

	sel := edit.Selection{
		File:   file,
		Offset: req.Offset,
		Length: req.Length,
		Text:   req.Text,
	}

	if req.Line > 0 {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, pickerr.ReadError(file, err)
		}
		off, err := edit.ResolveLineCol(content, req.Line, req.Col)
		if err != nil {
			return nil, err
		}
		sel.Offset = off
	}

	return edit.ReplaceInFile(sel, req.Path)
}

// Reindex runs a full rebuild.
func (s *Service) Reindex(ctx context.Context) (*index.Result, error) {
	return s.builder.Rebuild(ctx)
}

// Status reports process and table state.
func (s *Service) Status() Status {
	return Status{
		Running:  true,
		PID:      os.Getpid(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Root:     s.builder.Root(),
		Watching: s.watching.Load(),
		Index:    s.builder.Progress().Snapshot(),
		Table:    s.builder.Store().Snapshot(),
	}
}
