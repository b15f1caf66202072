package mergedrop

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/mergedrop/internal/config"
	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/registry"
)

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24, TickRate: 60}
}

// twoRankConfig always rolls rank 0, so two drops in one column merge.
func twoRankConfig() config.MergeDropConfig {
	cfg := config.DefaultMergeDropConfig()
	cfg.Ranks = cfg.Ranks[:2]
	cfg.Spawn.EasyCap = 0
	cfg.Merge.Impulse = 0
	return cfg
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{IDClassic, IDTimer} {
		if !registry.Exists(id) {
			t.Errorf("%s not registered", id)
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		g := New()
		g.ResetWith(testRuntime(12345), config.DefaultMergeDropConfig())
		bot := NewBot(7)
		for i := 0; i < 3000; i++ {
			g.Step(bot.Next(g.Snapshot(), g.Columns()))
		}
		return g.Snapshot()
	}

	s1, s2 := run(), run()
	if s1 != s2 {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1, s2)
	}
	if s1.Drops == 0 {
		t.Error("bot never dropped")
	}
}

func TestInvalidConfigFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.MergeDropConfig)
	}{
		{"negative impulse", func(c *config.MergeDropConfig) { c.Merge.Impulse = -0.5 }},
		{"too many ranks", func(c *config.MergeDropConfig) {
			for len(c.Ranks) <= 32 {
				c.Ranks = append(c.Ranks, config.RankConfig{Name: "Extra", Glyph: "x", Color: "white"})
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultMergeDropConfig()
			tc.mutate(&cfg)

			g := New()
			g.ResetWith(testRuntime(3), cfg)
			if g.session == nil {
				t.Fatal("game has no session")
			}
			if len(g.cfg.Ranks) != len(config.DefaultMergeDropConfig().Ranks) {
				t.Errorf("ranks = %d, expected the default table", len(g.cfg.Ranks))
			}

			drop := core.NewInputFrame()
			drop.Set(core.ActionDrop)
			g.Step(drop)
			if g.Snapshot().Drops != 1 {
				t.Error("drop was not accepted")
			}
		})
	}
}

func TestMergeThroughWell(t *testing.T) {
	g := New()
	g.ResetWith(testRuntime(1), twoRankConfig())

	drop := core.NewInputFrame()
	drop.Set(core.ActionDrop)
	idle := core.NewInputFrame()

	for i := 0; i < 300; i++ {
		if i == 0 || i == 60 {
			g.Step(drop)
			continue
		}
		g.Step(idle)
	}

	snap := g.Snapshot()
	if snap.Drops != 2 || snap.Merges != 1 {
		t.Fatalf("drops=%d merges=%d, expected 2 and 1", snap.Drops, snap.Merges)
	}
	if snap.Score != 3 {
		t.Errorf("Score = %d, expected 3", snap.Score)
	}
	rows := strings.Split(snap.Board, "\n")
	if bottom := rows[len(rows)-1]; bottom != "....s...." {
		t.Errorf("bottom row = %q, expected merged token in the centre", bottom)
	}
	if snap.HighestRank != 1 {
		t.Errorf("HighestRank = %d, expected 1", snap.HighestRank)
	}
}

func TestOverflowEndsGame(t *testing.T) {
	cfg := twoRankConfig()
	cfg.Board.HorizontalLimit = 0
	cfg.Board.Rows = 2
	cfg.Board.LineHeight = 1
	cfg.Timing.ContactThreshold = 500 * time.Millisecond

	g := New()
	g.ResetWith(testRuntime(3), cfg)

	drop := core.NewInputFrame()
	drop.Set(core.ActionDrop)

	endedTicks := 0
	for i := 0; i < 600; i++ {
		if g.Step(drop).Ended {
			endedTicks++
		}
	}

	if endedTicks != 1 {
		t.Fatalf("Ended reported %d times, expected 1", endedTicks)
	}
	if !g.State().GameOver || g.EndReason() != "overflow" {
		t.Errorf("GameOver=%v reason=%q", g.State().GameOver, g.EndReason())
	}
	if g.Progress() != 1 {
		t.Errorf("Progress() = %f at overflow", g.Progress())
	}
	if g.SessionID() == "" {
		t.Error("missing session id")
	}
}

func TestTimerModeAndRestart(t *testing.T) {
	cfg := config.DefaultMergeDropConfig()
	cfg.Timing.TimeAttack = 2 * time.Second

	g := NewTimer()
	rc := testRuntime(5)
	rc.TickRate = 50
	g.ResetWith(rc, cfg)
	if g.ID() != IDTimer {
		t.Fatalf("ID() = %q", g.ID())
	}

	idle := core.NewInputFrame()
	for i := 0; i < 99; i++ {
		g.Step(idle)
	}
	if g.State().GameOver {
		t.Fatal("ended before the time limit")
	}
	if res := g.Step(idle); !res.Ended {
		t.Fatal("expected the game to end at 2s")
	}
	if g.EndReason() != "time_up" || g.Elapsed() != 2*time.Second {
		t.Errorf("reason=%q elapsed=%v", g.EndReason(), g.Elapsed())
	}

	firstSession := g.SessionID()
	restart := core.NewInputFrame()
	restart.Set(core.ActionRestart)
	g.Step(restart)

	if g.State().GameOver || g.State().Score != 0 {
		t.Errorf("state after restart = %+v", g.State())
	}
	if g.SessionID() == firstSession {
		t.Error("restart reused the session id")
	}
}

func TestAbandonEndsSessionAsQuit(t *testing.T) {
	g := New()
	g.ResetWith(testRuntime(5), config.DefaultMergeDropConfig())

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("game should be paused")
	}

	if !g.Abandon() {
		t.Fatal("Abandon() = false for a paused session")
	}
	if st := g.State(); !st.GameOver || st.Paused {
		t.Errorf("state = %+v, expected over and not paused", st)
	}
	if g.EndReason() != "quit" {
		t.Errorf("EndReason() = %q, expected quit", g.EndReason())
	}
	if g.Abandon() {
		t.Error("second Abandon() should do nothing")
	}
}

func TestPauseFreezesWell(t *testing.T) {
	g := New()
	g.ResetWith(testRuntime(9), config.DefaultMergeDropConfig())

	drop := core.NewInputFrame()
	drop.Set(core.ActionDrop)
	g.Step(drop)
	for i := 0; i < 20; i++ {
		g.Step(core.NewInputFrame())
	}

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("game did not pause")
	}

	before := g.Snapshot()
	for i := 0; i < 120; i++ {
		g.Step(drop)
	}
	after := g.Snapshot()
	if before.Board != after.Board || after.Drops != before.Drops {
		t.Error("board changed while paused")
	}

	g.Step(pause)
	if g.State().Paused {
		t.Error("game did not resume")
	}
}

func TestCursorClampsToWell(t *testing.T) {
	g := New()
	g.ResetWith(testRuntime(2), config.DefaultMergeDropConfig())

	left := core.NewInputFrame()
	for i := 0; i < 10; i++ {
		left.Set(core.ActionLeft)
	}
	g.Step(left)
	if got := g.Snapshot().Column; got != 0 {
		t.Errorf("Column = %d, expected 0", got)
	}

	right := core.NewInputFrame()
	for i := 0; i < 20; i++ {
		right.Set(core.ActionRight)
	}
	g.Step(right)
	if got := g.Snapshot().Column; got != g.Columns()-1 {
		t.Errorf("Column = %d, expected %d", got, g.Columns()-1)
	}
}

func TestRender(t *testing.T) {
	g := New()
	g.ResetWith(testRuntime(4), config.DefaultMergeDropConfig())

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Merge Drop", "Score", "Next", "┌", "space drop"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}

	small := core.NewScreen(30, 10)
	g.Render(small)
	if !strings.Contains(small.String(), "Window too small") {
		t.Error("small screen should show size warning")
	}
}
