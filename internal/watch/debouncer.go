package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into one callback that fires once
// the triggers have been quiet for the configured interval.
type Debouncer struct {
	interval time.Duration
	callback func()

	mu    sync.Mutex
	timer *time.Timer
	// seq invalidates timers that already fired but have not yet run the
	// callback when a newer Trigger or Stop arrives.
	seq     uint64
	stopped bool
}

// NewDebouncer creates a debouncer that calls callback after interval of
// quiet.
func NewDebouncer(interval time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger restarts the quiet period. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() { d.fire(seq) })
}

// Stop cancels any pending callback and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.seq++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	current := seq == d.seq && !d.stopped
	d.mu.Unlock()

	if !current {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.callback()
}
