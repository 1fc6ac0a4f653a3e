package roadmap

import (
	"sync"
	"time"
)

// RecalcDelay is how long after the last resize/scroll event the layout
// recalculation runs.
const RecalcDelay = 100 * time.Millisecond

// Debouncer coalesces bursts of layout-affecting events into a single
// callback after a quiet period. Pending timers must be stopped on
// teardown so a stale callback cannot touch a replaced layout.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer. Zero or negative delay falls back to
// RecalcDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = RecalcDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any previously
// scheduled callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
