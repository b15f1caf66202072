package engine

import (
	"testing"
	"time"
)

func TestManualClockIgnoresNegative(t *testing.T) {
	c := NewManualClock()
	c.Advance(time.Second)
	c.Advance(-time.Hour)

	if got := c.Now(); got != time.Second {
		t.Errorf("Now() = %v, expected 1s", got)
	}
}

func TestWallClockExcludesPausedTime(t *testing.T) {
	base := time.Unix(1000, 0)
	at := base
	c := newWallClock(func() time.Time { return at })

	at = base.Add(2 * time.Second)
	if got := c.Now(); got != 2*time.Second {
		t.Fatalf("Now() = %v, expected 2s", got)
	}

	c.Pause()
	at = base.Add(10 * time.Second)
	if got := c.Now(); got != 2*time.Second {
		t.Errorf("paused Now() = %v, expected 2s", got)
	}

	c.Resume()
	at = base.Add(11 * time.Second)
	if got := c.Now(); got != 3*time.Second {
		t.Errorf("resumed Now() = %v, expected 3s", got)
	}

	// Pause and Resume are idempotent
	c.Resume()
	c.Pause()
	c.Pause()
	at = base.Add(20 * time.Second)
	c.Resume()
	if got := c.Now(); got != 3*time.Second {
		t.Errorf("Now() after second pause = %v, expected 3s", got)
	}
}
