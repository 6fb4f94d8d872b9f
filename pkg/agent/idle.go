package agent

import (
	"runtime"
	"time"
)

// IdleStrategy decides how a runner waits after a duty cycle. Idle is
// called with the work count the cycle returned; strategies back off on
// zero and reset on progress.
type IdleStrategy interface {
	Idle(workCount int)
}

// BusySpinIdleStrategy never waits. Lowest latency, one core pinned.
type BusySpinIdleStrategy struct{}

func (BusySpinIdleStrategy) Idle(int) {}

// YieldingIdleStrategy yields the processor when there is no work.
type YieldingIdleStrategy struct{}

func (YieldingIdleStrategy) Idle(workCount int) {
	if workCount == 0 {
		runtime.Gosched()
	}
}

// SleepingIdleStrategy sleeps a fixed duration when there is no work.
type SleepingIdleStrategy struct {
	Period time.Duration
}

func (s SleepingIdleStrategy) Idle(workCount int) {
	if workCount == 0 {
		time.Sleep(s.Period)
	}
}

// BackoffIdleStrategy yields first, then sleeps with doubling pauses up to
// a maximum. Any work resets the escalation.
type BackoffIdleStrategy struct {
	minPause time.Duration
	maxPause time.Duration
	pause    time.Duration
}

// NewBackoffIdleStrategy creates a backoff strategy escalating from
// minPause to maxPause.
func NewBackoffIdleStrategy(minPause, maxPause time.Duration) *BackoffIdleStrategy {
	if minPause <= 0 {
		minPause = time.Microsecond
	}
	if maxPause < minPause {
		maxPause = minPause
	}
	return &BackoffIdleStrategy{
		minPause: minPause,
		maxPause: maxPause,
	}
}

func (s *BackoffIdleStrategy) Idle(workCount int) {
	if workCount > 0 {
		s.pause = 0
		return
	}

	if s.pause == 0 {
		runtime.Gosched()
		s.pause = s.minPause
		return
	}

	time.Sleep(s.pause)
	s.pause *= 2
	if s.pause > s.maxPause {
		s.pause = s.maxPause
	}
}
