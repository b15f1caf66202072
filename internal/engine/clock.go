package engine

import "time"

// Clock is the time source for contact timestamps, drop cooldowns, settle
// delays and the time-attack countdown. It must not advance while the
// session is paused.
type Clock interface {
	Now() time.Duration
}

// pauser is implemented by clocks that keep running on their own and must
// be told about pauses.
type pauser interface {
	Pause()
	Resume()
}

// ManualClock advances only when told to. Tick-driven hosts advance it by
// one tick per unpaused step, so pausing freezes it for free.
type ManualClock struct {
	now time.Duration
}

// NewManualClock creates a clock at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the accumulated time.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// WallClock follows real elapsed time, independent of any simulation time
// scale, and excludes the spans spent paused.
type WallClock struct {
	now         func() time.Time
	origin      time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	paused      bool
}

// NewWallClock creates a clock reading zero now.
func NewWallClock() *WallClock {
	return newWallClock(time.Now)
}

func newWallClock(now func() time.Time) *WallClock {
	return &WallClock{now: now, origin: now()}
}

// Now returns real time elapsed since creation minus paused time.
func (c *WallClock) Now() time.Duration {
	at := c.now()
	if c.paused {
		at = c.pausedAt
	}
	return at.Sub(c.origin) - c.pausedTotal
}

// Pause freezes the clock.
func (c *WallClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.now()
}

// Resume unfreezes the clock; the paused span never shows up in Now.
func (c *WallClock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.pausedTotal += c.now().Sub(c.pausedAt)
}
