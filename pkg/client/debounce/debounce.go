// Package debounce converts a rapidly-changing value into a settled value
// emitted at most once per quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending emission. Every Set restarts the delay
// timer; only a value that survives a full quiet period is emitted. Stop
// cancels any pending emission permanently.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	emit    func(T)
	timer   *time.Timer
	pending T
	gen     uint64
	stopped bool
}

// New creates a debouncer that calls emit with the settled value. The emit
// callback runs on the timer goroutine.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, emit: emit}
}

// Set records a new raw value, cancelling any pending emission and starting a
// fresh quiet period.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = value
	// Stop alone cannot cancel a timer whose callback is already waiting on
	// the mutex; the generation check in fire handles that window.
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush emits the pending value immediately if a timer is running.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.gen++
	value := d.pending
	d.mu.Unlock()

	d.emit(value)
}

// Stop cancels any pending emission; the debouncer is unusable afterwards.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		// A newer Set (or Stop) superseded this timer while it waited.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	value := d.pending
	d.mu.Unlock()

	d.emit(value)
}
