package schedule

import (
	"sync"
	"time"
)

// Slot holds at most one pending task. Scheduling a new task cancels the
// previous one, so only the latest call within the delay window runs
// (trailing-edge debounce). Superseded tasks are dropped, never queued.
type Slot struct {
	clock Clock
	delay time.Duration

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewSlot creates a slot that runs tasks delay after they are scheduled.
func NewSlot(c Clock, delay time.Duration) *Slot {
	return &Slot{clock: c, delay: delay}
}

// Schedule replaces any pending task with f.
func (s *Slot) Schedule(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// A timer that already fired can still lose the lock race
		// against Schedule or Cancel; the generation check drops it.
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		f()
	})
}

// Cancel drops the pending task, if any, and reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

// Pending reports whether a task is waiting to run.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
