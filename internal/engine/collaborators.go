package engine

import "github.com/vovakirdan/mergedrop/internal/core"

// Physics receives the engine's commands for the external physics
// collaborator. Implementations must not call back into the engine from
// these methods; contact events are delivered on the host's next step.
type Physics interface {
	// Spawn creates a body for a new token at t.Pos.
	Spawn(t Token)
	// Despawn destroys the body of a consumed or cleared token.
	Despawn(id TokenID)
	// Hold makes the body kinematic without gravity at pos, detector off.
	Hold(id TokenID, pos core.Vec2)
	// Release makes the body dynamic with gravity, detector on.
	Release(id TokenID)
	// Impulse applies a small cosmetic push to a freshly merged token.
	Impulse(id TokenID, v core.Vec2)
	// Freeze stops simulating every body; called once when the session ends.
	Freeze()
}

// Cue is a fire-and-forget audio trigger.
type Cue int

const (
	CueDrop Cue = iota
	CueMerge
	CueGameOver
)

// String returns the cue name.
func (c Cue) String() string {
	switch c {
	case CueDrop:
		return "drop"
	case CueMerge:
		return "merge"
	case CueGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// CueSink plays audio cues. Play must return immediately; the engine never
// waits for or depends on playback.
type CueSink interface {
	Play(c Cue)
}

// Listener is notified by the session controller for presentation.
type Listener interface {
	SessionEnded(r Result)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(r Result)

// SessionEnded calls f(r).
func (f ListenerFunc) SessionEnded(r Result) {
	f(r)
}

type nopPhysics struct{}

func (nopPhysics) Spawn(Token)                {}
func (nopPhysics) Despawn(TokenID)            {}
func (nopPhysics) Hold(TokenID, core.Vec2)    {}
func (nopPhysics) Release(TokenID)            {}
func (nopPhysics) Impulse(TokenID, core.Vec2) {}
func (nopPhysics) Freeze()                    {}

type nopCues struct{}

func (nopCues) Play(Cue) {}

type nopListener struct{}

func (nopListener) SessionEnded(Result) {}
