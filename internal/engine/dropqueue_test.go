package engine

import (
	"testing"
	"time"
)

func TestDropQueueStartHoldsCurrent(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.s.Start()

	held, ok := h.s.queue.Held()
	if !ok {
		t.Fatal("no held token after Start")
	}
	if held.Rank != h.s.queue.Current() {
		t.Errorf("held rank = %d, expected current %d", held.Rank, h.s.queue.Current())
	}
	if held.Dynamic || held.DetectorEnabled {
		t.Error("held token should be kinematic with detector off")
	}
	for _, r := range []int{h.s.queue.Current(), h.s.queue.Next()} {
		if r < 0 || r > 3 {
			t.Errorf("opening rank %d outside easy range", r)
		}
	}
	if pos, ok := h.physics.held[held.ID]; !ok || pos != h.s.Cursor() {
		t.Errorf("physics hold = %v, expected %v", pos, h.s.Cursor())
	}
}

func TestDropQueueCursorClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoldHeight = 7
	h := newHarness(t, cfg)
	h.s.Start()

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{2.5, 2.5},
		{100, cfg.HorizontalLimit},
		{-100, -cfg.HorizontalLimit},
	}
	for _, tc := range tests {
		pos := h.s.MoveCursor(tc.in)
		if pos.X != tc.want || pos.Y != 7 {
			t.Errorf("MoveCursor(%v) = %v, expected (%v, 7)", tc.in, pos, tc.want)
		}
		held, _ := h.s.queue.Held()
		if held.Pos != pos {
			t.Errorf("held token at %v, expected %v", held.Pos, pos)
		}
	}
}

func TestDropQueueReleaseAndPromote(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.s.Start()

	first, _ := h.s.queue.Held()
	next := h.s.queue.Next()

	if !h.s.Drop() {
		t.Fatal("first drop rejected")
	}
	tok, _ := h.s.Token(first.ID)
	if tok.Held || !tok.Dynamic || !tok.DetectorEnabled {
		t.Errorf("released token = %+v, expected dynamic with detector on", tok)
	}
	if len(h.physics.released) != 1 || h.physics.released[0] != first.ID {
		t.Errorf("physics released %v", h.physics.released)
	}
	if h.s.queue.State() != QueueReleasing {
		t.Errorf("State() = %v, expected releasing", h.s.queue.State())
	}
	if _, ok := h.s.queue.Held(); ok {
		t.Error("nothing should be held during settle delay")
	}

	// Settle delay has not elapsed yet
	h.advance(399 * time.Millisecond)
	if _, ok := h.s.queue.Held(); ok {
		t.Error("next token promoted before settle delay")
	}

	h.advance(time.Millisecond)
	held, ok := h.s.queue.Held()
	if !ok {
		t.Fatal("next token not promoted after settle delay")
	}
	if held.Rank != next || h.s.queue.Current() != next {
		t.Errorf("promoted rank = %d, expected previewed %d", held.Rank, next)
	}
	if h.s.queue.State() != QueueIdle {
		t.Errorf("State() = %v, expected idle", h.s.queue.State())
	}
}

func TestDropQueueSingleRelease(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DropCooldown = 0
	h := newHarness(t, cfg)
	h.s.Start()

	if !h.s.Drop() {
		t.Fatal("first drop rejected")
	}
	for i := 0; i < 5; i++ {
		if h.s.Drop() {
			t.Fatalf("drop %d accepted while a promotion is pending", i+2)
		}
	}

	h.advance(cfg.SettleDelay)
	held := 0
	for _, tok := range h.s.Tokens() {
		if tok.Held {
			held++
		}
	}
	if held != 1 {
		t.Errorf("held tokens = %d, expected exactly 1", held)
	}
}

func TestDropQueueCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DropCooldown = time.Second
	cfg.SettleDelay = 100 * time.Millisecond
	h := newHarness(t, cfg)
	h.s.Start()

	h.s.Drop()
	h.advance(500 * time.Millisecond)
	if _, ok := h.s.queue.Held(); !ok {
		t.Fatal("expected held token after settle")
	}
	if h.s.Drop() {
		t.Error("drop accepted during cooldown")
	}

	h.advance(500 * time.Millisecond)
	if !h.s.Drop() {
		t.Error("drop rejected after cooldown")
	}
}

func TestDropIgnoredWhenNotActive(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	if h.s.Drop() {
		t.Error("drop accepted before Start")
	}

	h.s.Start()
	h.s.Pause()
	if h.s.Drop() {
		t.Error("drop accepted while paused")
	}

	h.s.Resume()
	h.s.End(ReasonQuit)
	if h.s.Drop() {
		t.Error("drop accepted after end")
	}
	if h.cues.count(CueDrop) != 0 {
		t.Errorf("drop cues = %d, expected 0", h.cues.count(CueDrop))
	}
}

func TestNextRankIgnoresHeldToken(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)
	h.s.Start()

	// A high held token must not raise the roll cap above the easy range.
	held, _ := h.s.queue.Held()
	h.s.reg.tokens[held.ID].Rank = 9
	for i := 0; i < 200; i++ {
		if r := h.s.queue.roll(); r > cfg.EasyCap {
			t.Fatalf("rolled %d with only a held token, expected <= %d", r, cfg.EasyCap)
		}
	}
}
