// Package mergedrop hosts the merge engine on a terminal well: a grid
// physics stand-in, input mapping, rendering and the two registered modes
// (classic and time attack).
package mergedrop

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergedrop/internal/config"
	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/engine"
	"github.com/vovakirdan/mergedrop/internal/registry"
)

const (
	IDClassic = "mergedrop"
	IDTimer   = "mergedrop_timer"
)

// Package-level settings applied on the next Reset, set by the CLI.
var (
	configPath       string
	difficultyPreset = config.DifficultyNormal
	logger           = log.New(io.Discard)
	cues             engine.CueSink
)

// SetConfigPath sets a custom config file path.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names fall back
// to normal.
func SetDifficultyPreset(preset string) {
	p, err := config.ParseDifficulty(preset)
	if err != nil {
		logger.Warn("ignoring difficulty", "err", err)
		p = config.DifficultyNormal
	}
	difficultyPreset = p
}

// SetLogger sets the logger handed to new sessions.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// SetCueSink sets the audio sink handed to new sessions. Nil disables audio.
func SetCueSink(c engine.CueSink) {
	cues = c
}

// Game adapts an engine session to the platform's Game interface.
type Game struct {
	mode engine.Mode
	cfg  config.MergeDropConfig

	rng     *rand.Rand
	clock   *engine.ManualClock
	well    *well
	session *engine.Session
	tickDur time.Duration
	tick    uint64
	column  int

	glyphs []rune
	colors []core.Color

	screenW int
	screenH int

	paused bool
	ended  bool
	result engine.Result
	merges int
	drops  int
}

// New creates a classic mode game.
func New() *Game {
	return &Game{mode: engine.ModeClassic}
}

// NewTimer creates a time attack game.
func NewTimer() *Game {
	return &Game{mode: engine.ModeTimer}
}

func init() {
	registry.Register(IDClassic, func() registry.Game {
		return New()
	})
	registry.Register(IDTimer, func() registry.Game {
		return NewTimer()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == engine.ModeTimer {
		return IDTimer
	}
	return IDClassic
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == engine.ModeTimer {
		return "Merge Drop (Time Attack)"
	}
	return "Merge Drop"
}

// loadConfig returns the configured game, falling back to the built-in
// defaults when the config cannot be used.
func loadConfig() config.MergeDropConfig {
	cfg, err := config.Load(configPath, difficultyPreset)
	if err != nil {
		logger.Warn("using default config", "err", err)
		cfg = config.DefaultMergeDropConfig()
		config.ApplyPreset(&cfg, difficultyPreset)
	}
	return cfg
}

// Reset initializes/restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.ResetWith(rc, loadConfig())
}

// ResetWith restarts the game with an explicit configuration.
func (g *Game) ResetWith(rc core.RuntimeConfig, cfg config.MergeDropConfig) {
	rc = rc.Normalized()
	if err := cfg.Validate(); err != nil {
		logger.Warn("using default config", "err", err)
		cfg = config.DefaultMergeDropConfig()
		config.ApplyPreset(&cfg, difficultyPreset)
	}
	g.cfg = cfg
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.clock = engine.NewManualClock()
	g.tickDur = time.Second / time.Duration(rc.TickRate)
	g.tick = 0
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.paused = false
	g.ended = false
	g.result = engine.Result{}
	g.merges = 0
	g.drops = 0

	g.glyphs = make([]rune, len(cfg.Ranks))
	g.colors = make([]core.Color, len(cfg.Ranks))
	for i, r := range cfg.Ranks {
		g.glyphs[i] = '?'
		for _, ch := range r.Glyph {
			g.glyphs[i] = ch
			break
		}
		g.colors[i], _ = core.ParseColor(r.Color)
	}

	limit := int(cfg.Board.HorizontalLimit)
	g.well = newWell(limit, cfg.Board.Rows, cfg.Board.LineHeight, cfg.Timing.FallInterval)
	g.column = limit

	sessionLog := logger.With("game", g.ID())
	if cfg.Debug.Logs {
		sessionLog.SetLevel(log.DebugLevel)
	}

	s, err := engine.NewSession(cfg.Session(g.mode), engine.Deps{
		Clock:    g.clock,
		Rand:     g.rng,
		Physics:  g.well,
		Cues:     cues,
		Listener: engine.ListenerFunc(g.sessionEnded),
		Logger:   sessionLog,
	})
	if err != nil {
		logger.Error("cannot start session", "err", err)
		g.session = nil
		return
	}
	g.session = s
	g.session.Start()
}

func (g *Game) sessionEnded(r engine.Result) {
	g.ended = true
	g.result = r
}

// Step advances the simulation by one tick.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	g.tick++
	if g.session == nil {
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionRestart) && g.ended {
		g.ResetWith(core.RuntimeConfig{
			Seed:     g.rng.Int63(),
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: int(time.Second / g.tickDur),
		}, g.cfg)
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionPause) && !g.ended {
		if g.paused {
			g.session.Resume()
		} else {
			g.session.Pause()
		}
		g.paused = g.session.State() == engine.StatePaused
	}

	if g.paused || g.ended {
		return core.StepResult{State: g.State()}
	}

	g.processInput(input)

	g.clock.Advance(g.tickDur)
	g.apply(g.well.Advance(g.tickDur))

	wasEnded := g.ended
	g.session.Tick()

	return core.StepResult{State: g.State(), Ended: g.ended && !wasEnded}
}

// processInput moves the cursor and requests drops.
func (g *Game) processInput(input core.InputFrame) {
	limit := int(g.cfg.Board.HorizontalLimit)
	move := input.Count(core.ActionRight) - input.Count(core.ActionLeft)
	if move != 0 {
		g.column = core.Clamp(g.column+move, 0, 2*limit)
		g.session.MoveCursor(float64(g.column - limit))
	}

	if input.Has(core.ActionDrop) {
		if g.session.Drop() {
			g.drops++
		}
	}
}

// apply feeds one well step's events to the session.
func (g *Game) apply(ev events) {
	for _, id := range ev.moved {
		if b, ok := g.well.bodies[id]; ok {
			g.session.SetPos(id, g.well.pos(b))
		}
	}

	for _, id := range ev.end {
		g.session.ContactEnd(id)
	}

	for _, p := range ev.pairs {
		if res := g.session.Collide(p.a, p.b, p.at); res.Outcome != engine.MergeRejected {
			g.merges++
		}
	}

	for _, id := range ev.begin {
		if c, ok := g.contact(id); ok {
			g.session.ContactBegin(c)
		}
	}
	for _, id := range ev.stay {
		if c, ok := g.contact(id); ok {
			g.session.ContactStay(c)
		}
	}
}

func (g *Game) contact(id engine.TokenID) (engine.Contact, bool) {
	t, ok := g.session.Token(id)
	if !ok {
		return engine.Contact{}, false
	}
	return engine.Contact{Token: id, Dynamic: t.Dynamic, DetectorEnabled: t.DetectorEnabled}, true
}

// Abandon ends a running or paused session as quit, so it still produces
// a result.
func (g *Game) Abandon() bool {
	if g.session == nil || g.ended || !g.session.End(engine.ReasonQuit) {
		return false
	}
	g.paused = false
	return true
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.session.Score(),
		GameOver: g.ended,
		Paused:   g.paused,
	}
}

// Progress returns how close the pile is to overflowing, in [0, 1].
func (g *Game) Progress() float64 {
	if g.session == nil {
		return 0
	}
	return g.session.Snapshot().Progress
}

// SessionID returns the id of the current session.
func (g *Game) SessionID() string {
	if g.session == nil {
		return ""
	}
	return g.session.ID()
}

// HighestRank returns the highest rank reached in the finished session.
func (g *Game) HighestRank() int {
	return g.result.HighestRank
}

// EndReason returns why the finished session ended.
func (g *Game) EndReason() string {
	return g.result.Reason.String()
}

// Elapsed returns the duration of the finished session.
func (g *Game) Elapsed() time.Duration {
	return g.result.Elapsed
}

// RankName returns the configured name of a rank.
func (g *Game) RankName(rank int) string {
	if rank < 0 || rank >= len(g.cfg.Ranks) {
		return ""
	}
	return g.cfg.Ranks[rank].Name
}

var (
	_ registry.Game      = (*Game)(nil)
	_ registry.Gauge     = (*Game)(nil)
	_ registry.Outcome   = (*Game)(nil)
	_ registry.Abandoner = (*Game)(nil)
	_ engine.Physics     = (*well)(nil)
)
