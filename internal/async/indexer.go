package async

import (
	"context"
	"sync"
)

// IndexFunc is the function signature for the actual indexing work.
type IndexFunc func(ctx context.Context, progress *IndexProgress) error

// BackgroundIndexer runs one indexing job in a background goroutine.
type BackgroundIndexer struct {
	progress *IndexProgress

	// IndexFunc is the indexing function to run. It is expected to report
	// its own terminal status on progress.
	IndexFunc IndexFunc

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	started bool
	running bool
	err     error
}

// NewBackgroundIndexer creates a background indexer reporting to progress.
// A nil progress gets a fresh tracker.
func NewBackgroundIndexer(progress *IndexProgress, fn IndexFunc) *BackgroundIndexer {
	if progress == nil {
		progress = NewIndexProgress()
	}
	return &BackgroundIndexer{
		progress:  progress,
		IndexFunc: fn,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Progress returns the progress tracker for this indexer.
func (b *BackgroundIndexer) Progress() *IndexProgress {
	return b.progress
}

// IsRunning returns true if the indexer is currently running.
func (b *BackgroundIndexer) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start begins indexing in a background goroutine and returns immediately.
// Only the first call has an effect. Use Wait to block until completion.
func (b *BackgroundIndexer) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.running = true
	b.mu.Unlock()

	go b.run(ctx)
}

func (b *BackgroundIndexer) run(ctx context.Context) {
	defer close(b.doneCh)
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-b.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if b.IndexFunc == nil {
		return
	}
	if err := b.IndexFunc(ctx, b.progress); err != nil {
		if b.progress.Status() != StatusError {
			b.progress.SetError(err.Error())
		}
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
	}
}

// Stop cancels the job and waits for it to finish. Safe to call before Start
// and more than once.
func (b *BackgroundIndexer) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })

	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if started {
		<-b.doneCh
	}
}

// Wait blocks until the job completes and returns its error.
// It returns nil immediately if the job was never started.
func (b *BackgroundIndexer) Wait() error {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return nil
	}

	<-b.doneCh
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Done returns a channel closed when the job has finished.
func (b *BackgroundIndexer) Done() <-chan struct{} {
	return b.doneCh
}
