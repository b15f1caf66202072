package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/registry"
	"github.com/vovakirdan/mergedrop/internal/storage"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bestStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	log        *log.Logger
	config     core.RuntimeConfig
	keys       *KeyMapper
	gauge      progress.Model
	palette    Palette
	inputFrame core.InputFrame
	gameState  core.GameState
	embedded   bool // hosted by SessionModel, which owns quitting
	quitting   bool
	backToMenu bool
	scoreSaved bool // whether the result has been saved for current game over
	newBest    bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		game:       game,
		store:      store,
		log:        logger,
		config:     cfg,
		keys:       NewKeyMapper(),
		gauge:      progress.New(progress.WithScaledGradient("#5AF78E", "#FF5C57"), progress.WithoutPercentage()),
		palette:    defaultPalette,
		inputFrame: core.NewInputFrame(),
	}
	m.screen = core.NewScreen(cfg.ScreenW, m.gameHeight(cfg.ScreenH))
	m.gauge.Width = max(cfg.ScreenW/3, 10)
	return m
}

// hasGauge reports whether the game exposes a danger level, which takes
// the bottom terminal row.
func (m Model) hasGauge() bool {
	_, ok := m.game.(registry.Gauge)
	return ok
}

func (m Model) gameHeight(h int) int {
	if m.hasGauge() && h > 1 {
		return h - 1
	}
	return h
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	m.log.Debug("game started", "game", m.game.ID(), "seed", m.config.Seed)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Keys().Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	switch {
	case isQuit:
		m.abandon()
		m.quitting = true
		if m.embedded {
			return m, nil
		}
		return m, tea.Quit

	case action == core.ActionBack:
		if m.gameState.GameOver || m.gameState.Paused {
			m.abandon()
			m.backToMenu = true
			if m.embedded {
				return m, nil
			}
			return m, tea.Quit
		}
		// Esc while playing pauses first
		m.inputFrame.Set(core.ActionPause)

	case action == core.ActionRestart:
		if m.gameState.GameOver {
			m.inputFrame.Set(core.ActionRestart)
		}

	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// handleResize processes window resize events. The game adapts its layout
// on the next render, so the session keeps running.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, m.gameHeight(msg.Height))
	m.gauge.Width = max(msg.Width/3, 10)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if result.Ended {
		m.log.Info("game over", "game", m.game.ID(), "score", m.gameState.Score)
	}

	if m.gameState.GameOver && !m.scoreSaved {
		m.saveResult()
	}
	if !m.gameState.GameOver && m.scoreSaved {
		// restarted
		m.scoreSaved = false
		m.newBest = false
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// abandon ends a session the player leaves early and records it.
func (m *Model) abandon() {
	a, ok := m.game.(registry.Abandoner)
	if !ok || m.gameState.GameOver || !a.Abandon() {
		return
	}
	m.gameState = m.game.State()
	m.log.Info("game abandoned", "game", m.game.ID(), "score", m.gameState.Score)
	if !m.scoreSaved {
		m.saveResult()
	}
}

// saveResult stores the finished session once.
func (m *Model) saveResult() {
	m.scoreSaved = true
	if m.store == nil || m.gameState.Score <= 0 {
		return
	}

	entry := storage.ScoreEntry{
		GameID:      m.game.ID(),
		Score:       m.gameState.Score,
		HighestRank: -1,
	}
	if o, ok := m.game.(registry.Outcome); ok {
		entry.SessionID = o.SessionID()
		entry.HighestRank = o.HighestRank()
		entry.EndReason = o.EndReason()
		entry.Duration = o.Elapsed()
	}

	best, err := m.store.IsHighScore(entry.GameID, entry.Score)
	if err != nil {
		m.log.Warn("cannot read high score", "game", entry.GameID, "err", err)
	}
	m.newBest = best

	if _, err := m.store.SaveResult(entry); err != nil {
		m.log.Warn("cannot save score", "game", entry.GameID, "err", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.log.Warn("cannot save screenshot", "err", err)
		return
	}
	dir := filepath.Join(home, ".mergedrop", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("cannot save screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("cannot save screenshot", "err", err)
		return
	}
	m.log.Info("screenshot saved", "path", path)
}

// statusLine renders the danger gauge and the new-best marker.
func (m Model) statusLine() string {
	g, ok := m.game.(registry.Gauge)
	if !ok {
		return ""
	}
	line := statusStyle.Render(" Line ") + m.gauge.ViewAs(g.Progress())
	if m.newBest {
		line += "  " + bestStyle.Render("New best!")
	}
	return line
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	out := m.palette.Render(m.screen)
	if m.hasGauge() {
		out += "\n" + m.statusLine()
	}
	return out
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// NewBest reports whether the saved result beat the previous high score.
func (m Model) NewBest() bool {
	return m.newBest
}

// Run starts the Bubble Tea program with the given game. It returns true
// when the player asked to go back to the menu.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) (bool, error) {
	model := NewModel(game, store, cfg, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.BackToMenu(), nil
}
