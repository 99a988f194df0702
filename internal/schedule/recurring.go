package schedule

import (
	"sync"
	"time"
)

// Recurring runs a task every interval until stopped. Ticks never
// overlap: the next tick is armed after the current run returns.
type Recurring struct {
	clock    Clock
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Every starts a recurring task. The first run happens one interval from now.
func Every(c Clock, interval time.Duration, fn func()) *Recurring {
	r := &Recurring{clock: c, interval: interval, fn: fn}
	r.mu.Lock()
	r.arm()
	r.mu.Unlock()
	return r
}

// arm must be called with r.mu held.
func (r *Recurring) arm() {
	r.timer = r.clock.AfterFunc(r.interval, r.tick)
}

func (r *Recurring) tick() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.arm()
	}
}

// Stop cancels future runs. It is safe to call more than once and on a
// nil receiver.
func (r *Recurring) Stop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}

// Stopped reports whether Stop has been called.
func (r *Recurring) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}
