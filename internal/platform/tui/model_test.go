package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/storage"
)

// fakeGame ends after endAt steps with a fixed score.
type fakeGame struct {
	steps int
	endAt int
	score int
	last  core.InputFrame
}

func (g *fakeGame) ID() string               { return "fake" }
func (g *fakeGame) Title() string            { return "Fake" }
func (g *fakeGame) Reset(core.RuntimeConfig) { g.steps = 0 }
func (g *fakeGame) Render(dst *core.Screen)  { dst.DrawText(0, 0, "fake game") }
func (g *fakeGame) Progress() float64        { return 0.5 }
func (g *fakeGame) SessionID() string        { return "sess-1" }
func (g *fakeGame) HighestRank() int         { return 4 }
func (g *fakeGame) EndReason() string        { return "overflow" }
func (g *fakeGame) Elapsed() time.Duration   { return 90 * time.Second }
func (g *fakeGame) over() bool               { return g.steps >= g.endAt }
func (g *fakeGame) State() core.GameState    { return core.GameState{Score: g.score, GameOver: g.over()} }

func (g *fakeGame) Step(in core.InputFrame) core.StepResult {
	g.last = in.Clone()
	if in.Has(core.ActionRestart) && g.over() {
		g.steps = 0
		return core.StepResult{State: g.State()}
	}
	wasOver := g.over()
	if !wasOver {
		g.steps++
	}
	return core.StepResult{State: g.State(), Ended: g.over() && !wasOver}
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func tick(t *testing.T, m Model, n int) Model {
	t.Helper()
	for i := 0; i < n; i++ {
		next, _ := m.Update(TickMsg(time.Time{}))
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 60, Seed: 1}
}

func TestModelSavesResultOnce(t *testing.T) {
	store := openStore(t)
	if _, err := store.SaveScore("fake", 50); err != nil {
		t.Fatalf("SaveScore() error: %v", err)
	}

	game := &fakeGame{endAt: 3, score: 120}
	m := NewModel(game, store, testConfig(), nil)
	m = tick(t, m, 10)

	scores, err := store.TopScores("fake", 10)
	if err != nil {
		t.Fatalf("TopScores() error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, expected 2", len(scores))
	}
	top := scores[0]
	if top.Score != 120 || top.SessionID != "sess-1" || top.HighestRank != 4 ||
		top.EndReason != "overflow" || top.Duration != 90*time.Second {
		t.Errorf("saved entry = %+v", top)
	}
	if !m.NewBest() {
		t.Error("120 beats 50, expected a new best")
	}
}

func TestModelRestartAllowsAnotherSave(t *testing.T) {
	store := openStore(t)
	game := &fakeGame{endAt: 2, score: 10}
	m := NewModel(game, store, testConfig(), nil)

	m = tick(t, m, 5)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = tick(t, m, 5)

	scores, err := store.AllScores("fake")
	if err != nil {
		t.Fatalf("AllScores() error: %v", err)
	}
	if len(scores) != 2 {
		t.Errorf("got %d scores after restart, expected 2", len(scores))
	}
}

func TestModelSkipsZeroScore(t *testing.T) {
	store := openStore(t)
	m := NewModel(&fakeGame{endAt: 1}, store, testConfig(), nil)
	tick(t, m, 3)

	scores, _ := store.AllScores("fake")
	if len(scores) != 0 {
		t.Errorf("zero score was saved: %+v", scores)
	}
}

func TestModelBackKey(t *testing.T) {
	game := &fakeGame{endAt: 100, score: 1}
	m := NewModel(game, nil, testConfig(), nil)
	m = tick(t, m, 1)

	// Esc while playing pauses instead of leaving
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Fatal("esc left a running game")
	}
	m = tick(t, m, 1)
	if !game.last.Has(core.ActionPause) {
		t.Error("esc while playing should pause")
	}

	game.steps = game.endAt
	m = tick(t, m, 1)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() || cmd == nil {
		t.Error("esc after game over should return to the menu")
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(&fakeGame{endAt: 100}, nil, testConfig(), nil)
	m.embedded = true
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.IsQuitting() {
		t.Error("q should quit")
	}
	if cmd != nil {
		t.Error("embedded model must leave quitting to its host")
	}
	if m.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModelViewIncludesGauge(t *testing.T) {
	m := NewModel(&fakeGame{endAt: 100}, nil, testConfig(), nil)
	out := m.View()

	lines := strings.Split(out, "\n")
	if len(lines) != testConfig().ScreenH {
		t.Errorf("view has %d lines, expected %d", len(lines), testConfig().ScreenH)
	}
	if !strings.Contains(out, "fake game") || !strings.Contains(out, "Line") {
		t.Errorf("view missing game or gauge:\n%s", out)
	}
}

// quitGame is a fakeGame that can be left mid-session.
type quitGame struct {
	fakeGame
	abandoned bool
}

func (g *quitGame) EndReason() string {
	if g.abandoned {
		return "quit"
	}
	return g.fakeGame.EndReason()
}

func (g *quitGame) Abandon() bool {
	if g.over() {
		return false
	}
	g.abandoned = true
	g.steps = g.endAt
	return true
}

func TestModelRecordsQuitSession(t *testing.T) {
	store := openStore(t)
	game := &quitGame{fakeGame: fakeGame{endAt: 1000, score: 7}}
	m := NewModel(game, store, testConfig(), nil)
	m = tick(t, m, 5)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.IsQuitting() || cmd == nil {
		t.Fatal("q should quit")
	}
	if !game.abandoned {
		t.Fatal("quitting a running game should end its session")
	}

	scores, err := store.TopScores("fake", 10)
	if err != nil {
		t.Fatalf("TopScores() error: %v", err)
	}
	if len(scores) != 1 || scores[0].EndReason != "quit" || scores[0].Score != 7 {
		t.Fatalf("scores = %+v, expected one quit result", scores)
	}
}

func TestModelQuitAfterGameOverSavesOnce(t *testing.T) {
	store := openStore(t)
	game := &quitGame{fakeGame: fakeGame{endAt: 3, score: 9}}
	m := NewModel(game, store, testConfig(), nil)
	m = tick(t, m, 5)

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if game.abandoned {
		t.Error("finished game should not be abandoned")
	}
	scores, err := store.TopScores("fake", 10)
	if err != nil {
		t.Fatalf("TopScores() error: %v", err)
	}
	if len(scores) != 1 || scores[0].EndReason != "overflow" {
		t.Errorf("scores = %+v, expected the single overflow result", scores)
	}
}
