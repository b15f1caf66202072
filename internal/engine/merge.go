package engine

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergedrop/internal/core"
)

// MergeOutcome describes what a merge attempt did.
type MergeOutcome int

const (
	// MergeRejected means nothing changed.
	MergeRejected MergeOutcome = iota
	// MergePromoted means both tokens were destroyed and one of the next
	// rank spawned at the contact point.
	MergePromoted
	// MergeConsumed means two max-tier tokens were destroyed with nothing
	// spawned in their place.
	MergeConsumed
)

// String returns the outcome name.
func (o MergeOutcome) String() string {
	switch o {
	case MergeRejected:
		return "rejected"
	case MergePromoted:
		return "promoted"
	case MergeConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// MergeResult reports a merge attempt.
type MergeResult struct {
	Outcome  MergeOutcome
	Rank     int   // rank of the two consumed tokens
	Promoted Token // zero unless Outcome is MergePromoted
	Points   int
}

// MergeResolver turns equal-rank contacts into promotions. Each token takes
// part in at most one merge; merges are all-or-nothing.
type MergeResolver struct {
	reg     *Registry
	ledger  *ScoreLedger
	physics Physics
	cues    CueSink
	rng     *rand.Rand
	log     *log.Logger

	maxRank int
	tag     string
	impulse float64
}

// TryMerge resolves a contact between a and b at the given point. Stale,
// held, mismatched or already-resolving tokens are rejected untouched.
func (m *MergeResolver) TryMerge(a, b TokenID, at core.Vec2) MergeResult {
	ta, tb, ok := m.reg.claim(a, b)
	if !ok {
		return MergeResult{Outcome: MergeRejected}
	}
	rank := ta.Rank

	m.reg.Remove(ta.ID)
	m.reg.Remove(tb.ID)
	m.physics.Despawn(ta.ID)
	m.physics.Despawn(tb.ID)

	res := MergeResult{Outcome: MergeConsumed, Rank: rank}
	next := rank + 1
	if next <= m.maxRank {
		t := m.reg.Spawn(next, m.tag, at, false)
		m.physics.Spawn(t)
		m.physics.Impulse(t.ID, m.randomImpulse())
		res.Outcome = MergePromoted
		res.Promoted = t
	}

	m.cues.Play(CueMerge)
	res.Points = m.ledger.AddMergeScore(next)

	m.log.Debug("merge", "a", a, "b", b, "rank", rank, "outcome", res.Outcome, "points", res.Points)
	return res
}

// randomImpulse returns a vector uniformly distributed inside the disc of
// radius impulse.
func (m *MergeResolver) randomImpulse() core.Vec2 {
	if m.impulse <= 0 {
		return core.Vec2{}
	}
	angle := m.rng.Float64() * 2 * math.Pi
	radius := math.Sqrt(m.rng.Float64()) * m.impulse
	return core.V(math.Cos(angle)*radius, math.Sin(angle)*radius)
}
