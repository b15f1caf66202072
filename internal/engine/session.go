package engine

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/mergedrop/internal/core"
)

// ErrInvalidConfig is returned by NewSession for unusable configuration.
var ErrInvalidConfig = errors.New("engine: invalid config")

// maxRanks keeps the first-reach bonus 3^N within int range.
const maxRanks = 32

// Mode selects the end condition besides overflow.
type Mode int

const (
	// ModeClassic ends only on overflow.
	ModeClassic Mode = iota
	// ModeTimer also ends when the time-attack countdown runs out.
	ModeTimer
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeTimer {
		return "timer"
	}
	return "classic"
}

// ParseMode converts a mode name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classic", "":
		return ModeClassic, nil
	case "timer":
		return ModeTimer, nil
	default:
		return ModeClassic, fmt.Errorf("unknown mode %q", s)
	}
}

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason says why a session ended.
type EndReason int

const (
	ReasonNone EndReason = iota
	ReasonOverflow
	ReasonTimeUp
	ReasonQuit
)

// String returns the reason name.
func (r EndReason) String() string {
	switch r {
	case ReasonOverflow:
		return "overflow"
	case ReasonTimeUp:
		return "time_up"
	case ReasonQuit:
		return "quit"
	default:
		return "none"
	}
}

// Config holds the tunables of one session.
type Config struct {
	Ranks int    // number of ranks; valid ranks are 0..Ranks-1
	Tag   string // category tag of merge tokens

	HorizontalLimit float64
	HoldHeight      float64

	DropCooldown     time.Duration
	SettleDelay      time.Duration
	ContactThreshold time.Duration
	TimeLimit        time.Duration // only used in ModeTimer

	EasyCap int     // roll cap while the board apex is below rank 2
	Impulse float64 // magnitude bound of the post-merge push

	Mode Mode
}

// DefaultConfig returns the stock tuning: eleven ranks, a 0.4s drop
// cooldown and settle delay, and a five second overflow threshold.
func DefaultConfig() Config {
	return Config{
		Ranks:            11,
		Tag:              "fruit",
		HorizontalLimit:  4,
		HoldHeight:       0,
		DropCooldown:     400 * time.Millisecond,
		SettleDelay:      400 * time.Millisecond,
		ContactThreshold: 5 * time.Second,
		TimeLimit:        60 * time.Second,
		EasyCap:          3,
		Impulse:          0.5,
		Mode:             ModeClassic,
	}
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	switch {
	case c.Ranks < 1 || c.Ranks > maxRanks:
		return fmt.Errorf("%w: ranks must be in [1, %d], got %d", ErrInvalidConfig, maxRanks, c.Ranks)
	case c.HorizontalLimit < 0:
		return fmt.Errorf("%w: horizontal limit must not be negative", ErrInvalidConfig)
	case c.DropCooldown < 0 || c.SettleDelay < 0:
		return fmt.Errorf("%w: drop timings must not be negative", ErrInvalidConfig)
	case c.ContactThreshold <= 0:
		return fmt.Errorf("%w: contact threshold must be positive", ErrInvalidConfig)
	case c.Mode == ModeTimer && c.TimeLimit <= 0:
		return fmt.Errorf("%w: timer mode needs a positive time limit", ErrInvalidConfig)
	case c.EasyCap < 0:
		return fmt.Errorf("%w: easy cap must not be negative", ErrInvalidConfig)
	case c.Impulse < 0:
		return fmt.Errorf("%w: impulse must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Deps are the collaborators a session is wired to. Nil fields get
// do-nothing defaults, except Clock which defaults to a WallClock and Rand
// which defaults to a time-seeded source.
type Deps struct {
	Clock    Clock
	Rand     *rand.Rand
	Physics  Physics
	Cues     CueSink
	Listener Listener
	Logger   *log.Logger
}

// Result is the outcome of a finished session.
type Result struct {
	SessionID   string
	Mode        Mode
	Reason      EndReason
	Score       int
	HighestRank int
	Elapsed     time.Duration
}

// Snapshot is a read-only view of the session for presentation.
type Snapshot struct {
	SessionID   string
	State       State
	Mode        Mode
	Score       int
	Current     int
	Next        int
	Cursor      core.Vec2
	Holding     bool
	Progress    float64
	Remaining   time.Duration
	Tokens      int
	HighestRank int
	Reason      EndReason
}

// Session wires the registry, resolver, arbitrator, drop queue, overflow
// monitor and score ledger together and owns the session lifecycle.
//
// A Session is not safe for concurrent use.
type Session struct {
	cfg      Config
	clock    Clock
	physics  Physics
	cues     CueSink
	listener Listener
	log      *log.Logger

	reg      *Registry
	ledger   *ScoreLedger
	arb      *Arbitrator
	merges   *MergeResolver
	queue    *DropQueue
	overflow *OverflowMonitor

	id        string
	state     State
	reason    EndReason
	startedAt time.Duration
	endedAt   time.Duration
	peak      int
}

// NewSession validates cfg and builds an idle session.
func NewSession(cfg Config, deps Deps) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if deps.Clock == nil {
		deps.Clock = NewWallClock()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Physics == nil {
		deps.Physics = nopPhysics{}
	}
	if deps.Cues == nil {
		deps.Cues = nopCues{}
	}
	if deps.Listener == nil {
		deps.Listener = nopListener{}
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}

	maxRank := cfg.Ranks - 1
	reg := NewRegistry()
	ledger := NewScoreLedger(maxRank)
	arb := NewArbitrator(maxRank, cfg.EasyCap, deps.Rand, deps.Logger)

	s := &Session{
		cfg:      cfg,
		clock:    deps.Clock,
		physics:  deps.Physics,
		cues:     deps.Cues,
		listener: deps.Listener,
		log:      deps.Logger,
		reg:      reg,
		ledger:   ledger,
		arb:      arb,
		merges: &MergeResolver{
			reg:     reg,
			ledger:  ledger,
			physics: deps.Physics,
			cues:    deps.Cues,
			rng:     deps.Rand,
			log:     deps.Logger,
			maxRank: maxRank,
			tag:     cfg.Tag,
			impulse: cfg.Impulse,
		},
		queue: &DropQueue{
			reg:        reg,
			arb:        arb,
			physics:    deps.Physics,
			cues:       deps.Cues,
			log:        deps.Logger,
			tag:        cfg.Tag,
			maxRank:    maxRank,
			limit:      cfg.HorizontalLimit,
			holdHeight: cfg.HoldHeight,
			cooldown:   cfg.DropCooldown,
			settle:     cfg.SettleDelay,
		},
		overflow: newOverflowMonitor(reg, cfg.Tag, cfg.ContactThreshold, deps.Logger),
		peak:     -1,
	}
	return s, nil
}

// Start begins a fresh session, clearing any tokens left by the previous
// one. It may be called in any state.
func (s *Session) Start() {
	for _, t := range s.reg.Tokens() {
		s.physics.Despawn(t.ID)
	}
	s.reg.Reset()
	s.ledger.Reset()
	s.overflow.Reset()

	if p, ok := s.clock.(pauser); ok {
		p.Resume()
	}

	s.id = uuid.NewString()
	s.state = StateActive
	s.reason = ReasonNone
	s.startedAt = s.clock.Now()
	s.endedAt = 0
	s.peak = -1

	s.queue.Start()
	if t, ok := s.queue.Held(); ok {
		s.peak = t.Rank
	}

	s.log.Info("session started", "session", s.id, "mode", s.cfg.Mode)
}

// Pause freezes the session clock, drop input and overflow evaluation.
func (s *Session) Pause() bool {
	if s.state != StateActive {
		return false
	}
	s.state = StatePaused
	if p, ok := s.clock.(pauser); ok {
		p.Pause()
	}
	s.log.Debug("session paused", "session", s.id)
	return true
}

// Resume continues a paused session.
func (s *Session) Resume() bool {
	if s.state != StatePaused {
		return false
	}
	s.state = StateActive
	if p, ok := s.clock.(pauser); ok {
		p.Resume()
	}
	s.log.Debug("session resumed", "session", s.id)
	return true
}

// Tick runs one evaluation pass: pending drop promotions, the overflow
// check and, in timer mode, the countdown. It is a no-op unless active.
func (s *Session) Tick() {
	if s.state != StateActive {
		return
	}
	now := s.clock.Now()

	s.queue.Tick(now)
	if t, ok := s.queue.Held(); ok {
		s.peak = max(s.peak, t.Rank)
	}

	if s.overflow.Tick(now) {
		s.End(ReasonOverflow)
		return
	}
	if s.cfg.Mode == ModeTimer && s.remaining(now) <= 0 {
		s.End(ReasonTimeUp)
	}
}

// Drop asks the drop queue to release the held token.
func (s *Session) Drop() bool {
	return s.queue.RequestDrop(s.clock.Now(), s.state == StateActive)
}

// MoveCursor moves the drop cursor while the session is active.
func (s *Session) MoveCursor(x float64) core.Vec2 {
	if s.state != StateActive {
		return s.queue.Position()
	}
	return s.queue.MoveCursor(x)
}

// Cursor returns the current hold point.
func (s *Session) Cursor() core.Vec2 {
	return s.queue.Position()
}

// Collide reports a contact between two tokens. Equal-rank pairs merge;
// after the session ends merges still resolve but score nothing.
func (s *Session) Collide(a, b TokenID, at core.Vec2) MergeResult {
	if s.state == StateIdle {
		return MergeResult{Outcome: MergeRejected}
	}
	res := s.merges.TryMerge(a, b, at)
	if res.Outcome == MergePromoted {
		s.peak = max(s.peak, res.Promoted.Rank)
	}
	return res
}

// ContactBegin reports a token starting to touch the boundary line.
func (s *Session) ContactBegin(c Contact) {
	if s.state != StateActive && s.state != StatePaused {
		return
	}
	s.overflow.ContactBegin(c, s.clock.Now())
}

// ContactStay reports a token still touching the boundary line.
func (s *Session) ContactStay(c Contact) {
	if s.state != StateActive && s.state != StatePaused {
		return
	}
	s.overflow.ContactStay(c, s.clock.Now())
}

// ContactEnd reports a token leaving the boundary line.
func (s *Session) ContactEnd(id TokenID) {
	s.overflow.ContactEnd(id)
}

// SetBody records body facts reported by the physics collaborator.
func (s *Session) SetBody(id TokenID, dynamic, detector bool) bool {
	return s.reg.SetBody(id, dynamic, detector)
}

// SetPos records a token position reported by the physics collaborator.
func (s *Session) SetPos(id TokenID, pos core.Vec2) bool {
	return s.reg.SetPos(id, pos)
}

// End finishes the session. Only the first call while active or paused has
// any effect: it freezes the score and physics, plays the game-over cue and
// notifies the listener. It reports whether this call ended the session.
func (s *Session) End(reason EndReason) bool {
	if s.state != StateActive && s.state != StatePaused {
		return false
	}
	if s.state == StatePaused {
		if p, ok := s.clock.(pauser); ok {
			p.Resume()
		}
	}

	s.state = StateEnded
	s.reason = reason
	s.endedAt = s.clock.Now()

	s.ledger.Freeze()
	s.queue.Stop()
	s.overflow.stop()
	s.physics.Freeze()
	s.cues.Play(CueGameOver)

	res := s.result()
	s.log.Info("session ended", "session", s.id, "reason", reason, "score", res.Score, "elapsed", res.Elapsed)
	s.listener.SessionEnded(res)
	return true
}

func (s *Session) result() Result {
	return Result{
		SessionID:   s.id,
		Mode:        s.cfg.Mode,
		Reason:      s.reason,
		Score:       s.ledger.Total(),
		HighestRank: s.peak,
		Elapsed:     s.endedAt - s.startedAt,
	}
}

// Result returns the outcome once the session has ended.
func (s *Session) Result() (Result, bool) {
	if s.state != StateEnded {
		return Result{}, false
	}
	return s.result(), true
}

func (s *Session) remaining(now time.Duration) time.Duration {
	if s.cfg.Mode != ModeTimer {
		return 0
	}
	left := s.cfg.TimeLimit - (now - s.startedAt)
	return max(left, 0)
}

// Remaining returns the time left in timer mode, or zero in classic mode.
func (s *Session) Remaining() time.Duration {
	switch s.state {
	case StateIdle:
		if s.cfg.Mode == ModeTimer {
			return s.cfg.TimeLimit
		}
		return 0
	case StateEnded:
		return s.remaining(s.endedAt)
	}
	return s.remaining(s.clock.Now())
}

// Snapshot captures the session for presentation.
func (s *Session) Snapshot() Snapshot {
	_, holding := s.queue.Held()
	return Snapshot{
		SessionID:   s.id,
		State:       s.state,
		Mode:        s.cfg.Mode,
		Score:       s.ledger.Total(),
		Current:     s.queue.Current(),
		Next:        s.queue.Next(),
		Cursor:      s.queue.Position(),
		Holding:     holding,
		Progress:    s.overflow.Progress(),
		Remaining:   s.Remaining(),
		Tokens:      s.reg.Len(),
		HighestRank: s.peak,
		Reason:      s.reason,
	}
}

// Tokens returns every live token, held token included, ordered by ID.
func (s *Session) Tokens() []Token {
	return s.reg.Tokens()
}

// Token returns one live token.
func (s *Session) Token(id TokenID) (Token, bool) {
	return s.reg.Get(id)
}

// ID returns the identifier of the current session, empty before Start.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Mode returns the configured mode.
func (s *Session) Mode() Mode { return s.cfg.Mode }

// Score returns the ledger total.
func (s *Session) Score() int { return s.ledger.Total() }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }
