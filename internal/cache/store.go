// Package cache holds the live lookup table that queries are answered from.
//
// A Store is owned by whoever constructs it and passed by reference to the
// indexing and query code. Rebuilds publish a complete table with Swap;
// readers never observe a partially merged table.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/yamlpick/internal/yamlindex"
)

// Stats describes the batch that produced a table.
type Stats struct {
	FilesIndexed int
	FilesSkipped int
	Duration     time.Duration
}

// Snapshot is a point-in-time summary of the store.
type Snapshot struct {
	Generation   uint64        `json:"generation"`
	FilesIndexed int           `json:"files_indexed"`
	FilesSkipped int           `json:"files_skipped"`
	Values       int           `json:"values"`
	Paths        int           `json:"paths"`
	BuiltAt      time.Time     `json:"built_at,omitzero"`
	BuildTime    time.Duration `json:"build_time_ns"`
}

type generation struct {
	table   *yamlindex.Table
	stats   Stats
	number  uint64
	builtAt time.Time
}

// Store publishes lookup tables to concurrent readers.
type Store struct {
	current atomic.Pointer[generation]
}

// New returns a store holding an empty table (generation 0).
func New() *Store {
	s := &Store{}
	s.current.Store(&generation{table: yamlindex.NewTable()})
	return s
}

// Swap replaces the whole table and returns the new generation number.
// A nil table is treated as empty.
func (s *Store) Swap(table *yamlindex.Table, stats Stats) uint64 {
	if table == nil {
		table = yamlindex.NewTable()
	}
	for {
		old := s.current.Load()
		next := &generation{
			table:   table,
			stats:   stats,
			number:  old.number + 1,
			builtAt: time.Now(),
		}
		if s.current.CompareAndSwap(old, next) {
			return next.number
		}
	}
}

// Lookup answers an exact-match query against the current table.
func (s *Store) Lookup(query string) ([]string, bool) {
	return s.current.Load().table.Lookup(query)
}

// Table returns the current table. Callers must not mutate it.
func (s *Store) Table() *yamlindex.Table {
	return s.current.Load().table
}

// Generation returns the number of swaps performed so far.
func (s *Store) Generation() uint64 {
	return s.current.Load().number
}

// Snapshot summarizes the current table.
func (s *Store) Snapshot() Snapshot {
	g := s.current.Load()
	return Snapshot{
		Generation:   g.number,
		FilesIndexed: g.stats.FilesIndexed,
		FilesSkipped: g.stats.FilesSkipped,
		Values:       g.table.Len(),
		Paths:        g.table.PathCount(),
		BuiltAt:      g.builtAt,
		BuildTime:    g.stats.Duration,
	}
}
