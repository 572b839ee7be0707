package main

import (
	"time"

	"github.com/loov/hrtime"
)

// stepTimer measures frames per second over whole seconds of wall time.
type stepTimer struct {
	clock func() time.Duration

	last       time.Duration
	second     time.Duration
	thisSecond int
	fps        int
}

func newStepTimer() *stepTimer {
	return newStepTimerWithClock(hrtime.Now)
}

func newStepTimerWithClock(clock func() time.Duration) *stepTimer {
	return &stepTimer{clock: clock, last: clock()}
}

// tick records one frame. It reports true when a full second has passed
// and the FPS value was refreshed.
func (t *stepTimer) tick() bool {
	now := t.clock()
	delta := now - t.last
	t.last = now

	t.second += delta
	t.thisSecond++

	if t.second < time.Second {
		return false
	}

	t.fps = t.thisSecond
	t.thisSecond = 0
	t.second %= time.Second
	return true
}

func (t *stepTimer) framesPerSecond() int {
	return t.fps
}
