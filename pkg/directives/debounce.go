package directives

import (
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of triggers, once the burst has been
// quiet for the delay. Retriggering cancels the pending call; a call that has
// already started is never cancelled.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *pendingCall
}

type pendingCall struct {
	timer *time.Timer
	done  chan struct{}
}

// NewDebouncer creates a debouncer. A delay of zero or less runs triggers immediately.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, cancelling the previously pending call. The returned
// channel is closed when the execution fn started has ended, or as soon as this
// trigger is superseded or stopped.
func (d *Debouncer) Trigger(fn func() <-chan struct{}) <-chan struct{} {
	if d.delay <= 0 {
		return fn()
	}

	call := &pendingCall{done: make(chan struct{})}
	d.mu.Lock()
	d.cancelLocked()
	d.pending = call
	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.pending == call
		if current {
			d.pending = nil
		}
		d.mu.Unlock()

		if !current {
			close(call.done)
			return
		}
		<-fn()
		close(call.done)
	})
	d.mu.Unlock()
	return call.done
}

// Stop cancels the pending call, if any. It reports whether one was cancelled.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	call := d.pending
	if call == nil {
		return false
	}
	d.pending = nil
	if call.timer.Stop() {
		close(call.done)
		return true
	}
	// Already fired: the timer goroutine sees it was superseded and closes done.
	return false
}
