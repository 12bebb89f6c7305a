// Package async tracks rebuild progress and runs the initial rebuild in the
// background so servers can answer while the index is being built.
package async

import (
	"sync"
	"time"
)

// IndexingStatus represents the state of the most recent rebuild.
type IndexingStatus string

const (
	// StatusIdle indicates no rebuild has started yet.
	StatusIdle IndexingStatus = "idle"
	// StatusScanning indicates files are being discovered.
	StatusScanning IndexingStatus = "scanning"
	// StatusIndexing indicates discovered files are being read and flattened.
	StatusIndexing IndexingStatus = "indexing"
	// StatusReady indicates the last rebuild published a table.
	StatusReady IndexingStatus = "ready"
	// StatusError indicates the last rebuild failed before publishing.
	StatusError IndexingStatus = "error"
)

// IndexProgressSnapshot is an immutable snapshot of indexing progress.
type IndexProgressSnapshot struct {
	Status         string  `json:"status"`
	FilesTotal     int     `json:"files_total"`
	FilesProcessed int     `json:"files_processed"`
	FilesSkipped   int     `json:"files_skipped"`
	ProgressPct    float64 `json:"progress_pct"`
	Rebuilds       int     `json:"rebuilds"`
	Generation     uint64  `json:"generation"`
	ElapsedMillis  int64   `json:"elapsed_ms"`
	LastDuration   string  `json:"last_duration,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// IndexProgress provides thread-safe tracking of rebuild progress.
type IndexProgress struct {
	mu sync.RWMutex

	status         IndexingStatus
	filesTotal     int
	filesProcessed int
	filesSkipped   int
	rebuilds       int
	generation     uint64
	startTime      time.Time
	lastDuration   time.Duration
	errorMessage   string
}

// NewIndexProgress creates an idle progress tracker.
func NewIndexProgress() *IndexProgress {
	return &IndexProgress{status: StatusIdle}
}

// Begin marks the start of a rebuild and resets the per-rebuild counters.
func (p *IndexProgress) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusScanning
	p.filesTotal = 0
	p.filesProcessed = 0
	p.filesSkipped = 0
	p.errorMessage = ""
	p.startTime = time.Now()
	p.rebuilds++
}

// SetIndexing records the end of discovery and the number of files to index.
func (p *IndexProgress) SetIndexing(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusIndexing
	p.filesTotal = total
}

// FileDone records one processed file. Safe for concurrent workers.
func (p *IndexProgress) FileDone(skipped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filesProcessed++
	if skipped {
		p.filesSkipped++
	}
}

// SetReady marks the rebuild as published under the given generation.
func (p *IndexProgress) SetReady(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusReady
	p.generation = generation
	if !p.startTime.IsZero() {
		p.lastDuration = time.Since(p.startTime)
	}
}

// SetError marks the rebuild as failed with an error message. The previously
// published table, if any, stays in service.
func (p *IndexProgress) SetError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusError
	p.errorMessage = message
}

// Status returns the current status.
func (p *IndexProgress) Status() IndexingStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// IsIndexing returns true while a rebuild is scanning or indexing.
func (p *IndexProgress) IsIndexing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status == StatusScanning || p.status == StatusIndexing
}

// Snapshot returns an immutable copy of the current progress state.
func (p *IndexProgress) Snapshot() IndexProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var progressPct float64
	if p.filesTotal > 0 {
		progressPct = float64(p.filesProcessed) / float64(p.filesTotal) * 100.0
	}

	var elapsed int64
	if !p.startTime.IsZero() {
		elapsed = time.Since(p.startTime).Milliseconds()
	}

	var last string
	if p.lastDuration > 0 {
		last = p.lastDuration.Round(time.Millisecond).String()
	}

	return IndexProgressSnapshot{
		Status:         string(p.status),
		FilesTotal:     p.filesTotal,
		FilesProcessed: p.filesProcessed,
		FilesSkipped:   p.filesSkipped,
		ProgressPct:    progressPct,
		Rebuilds:       p.rebuilds,
		Generation:     p.generation,
		ElapsedMillis:  elapsed,
		LastDuration:   last,
		ErrorMessage:   p.errorMessage,
	}
}
