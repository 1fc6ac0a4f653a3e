// Package reveal paces the on-screen appearance of already-available
// results: one item per fixed interval, from zero up to the full set.
package reveal

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the cadence between item reveals.
const DefaultInterval = 500 * time.Millisecond

// PlaceholderCount is the minimum number of result slots the layout
// reserves; missing results are padded with inert placeholders.
const PlaceholderCount = 3

// Placeholders returns how many inert slots pad a partially-revealed
// result row. Purely a layout aid, no data semantics.
func Placeholders(shown int) int {
	if shown >= PlaceholderCount {
		return 0
	}
	return PlaceholderCount - shown
}

// Scheduler reveals one result set at a time. Starting a new set cancels
// the previous run; a set that is already fully shown is not re-animated.
type Scheduler struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	shown  int
	total  int
}

// New creates a scheduler with the given cadence. Zero or negative falls
// back to DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// Start begins revealing n items from zero and returns a channel that
// carries each new shown count, closing once all n are visible or the
// run is cancelled. A nil/closed channel semantics: n <= 0, or a set of
// the same size already fully revealed, returns an immediately closed
// channel and changes nothing.
func (s *Scheduler) Start(ctx context.Context, n int) <-chan int {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(chan int)
	if n <= 0 || (n == s.total && s.shown == s.total && s.total > 0) {
		close(done)
		return done
	}

	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.shown = 0
	s.total = n

	go s.run(runCtx, n, done)
	return done
}

func (s *Scheduler) run(ctx context.Context, n int, out chan<- int) {
	defer close(out)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 1; i <= n; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		// A replaced result set must not receive this run's indices.
		if ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.shown = i
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case out <- i:
		}
	}
}

// Shown returns how many items are currently visible.
func (s *Scheduler) Shown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Stop cancels any in-progress reveal. Required on teardown so stale
// ticks cannot touch a replaced result set.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
