// Package picker provides the modal picker shell that drives a
// selector.Delegate, plus the single-threaded dispatcher standing in for
// the UI thread.
package picker

import "sync"

// Dispatcher serializes callbacks onto one goroutine. It satisfies
// selector.Dispatcher.
type Dispatcher struct {
	fns  chan func()
	done chan struct{}
	once sync.Once
}

// NewDispatcher creates a dispatcher. Call Run from the goroutine that
// owns UI state.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		fns:  make(chan func(), 128),
		done: make(chan struct{}),
	}
}

// Post schedules fn on the dispatcher goroutine. Posts after Stop are
// dropped; the leading check keeps a closed done channel from losing the
// select race against a buffered send.
func (d *Dispatcher) Post(fn func()) {
	select {
	case <-d.done:
		return
	default:
	}
	select {
	case <-d.done:
	case d.fns <- fn:
	}
}

// Run executes posted callbacks until Stop is called. It blocks.
func (d *Dispatcher) Run() {
	for {
		select {
		case <-d.done:
			return
		case fn := <-d.fns:
			fn()
		}
	}
}

// RunPending executes callbacks already queued, without blocking for more.
// Useful for hosts that pump the dispatcher from their own event loop.
func (d *Dispatcher) RunPending() {
	for {
		select {
		case <-d.done:
			return
		case fn := <-d.fns:
			fn()
		default:
			return
		}
	}
}

// Stop terminates the dispatcher. Idempotent.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.done)
	})
}
