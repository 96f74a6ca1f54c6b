// Package runtime provides the scheduling and fan-out plumbing of the
// simulator. It carries no domain rules: timers and sink delivery only.
package runtime

import (
	"sync"
	"time"

	"chat-sim/contract"
)

// TimerScheduler schedules callbacks on real wall-clock timers.
// Each callback runs in its own timer goroutine; callers protect their
// state with their own locks.
type TimerScheduler struct{}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) After(d time.Duration, fn func()) contract.CancelFunc {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

// ManualScheduler is a deterministic Scheduler for tests: nothing fires
// until Advance is called. Timers fire in scheduling order once due.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending []*manualTimer
}

type manualTimer struct {
	id       int
	deadline time.Duration
	fn       func()
	stopped  bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) contract.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	timer := &manualTimer{id: s.nextID, deadline: s.now + d, fn: fn}
	s.pending = append(s.pending, timer)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		timer.stopped = true
	}
}

// Advance moves the fake clock forward and fires every timer whose deadline
// has passed, in scheduling order. Callbacks run outside the lock so they
// may schedule further timers.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()

	for {
		timer := s.popDue()
		if timer == nil {
			return
		}
		timer.fn()
	}
}

// Pending reports how many timers are armed and not yet fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, timer := range s.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}

func (s *ManualScheduler) popDue() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < len(s.pending); i++ {
		timer := s.pending[i]
		if timer.deadline > s.now {
			continue
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		i--
		if timer.stopped {
			continue
		}
		return timer
	}
	return nil
}
