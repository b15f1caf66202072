package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergedrop/internal/core"
)

// QueueState is the drop queue's release state.
type QueueState int

const (
	// QueueIdle means a token is held (or none could be spawned) and drops
	// are accepted once the cooldown has passed.
	QueueIdle QueueState = iota
	// QueueReleasing means a token was just released and the next one is
	// waiting for the settle delay.
	QueueReleasing
)

// String returns the state name.
func (s QueueState) String() string {
	if s == QueueReleasing {
		return "releasing"
	}
	return "idle"
}

// DropQueue owns the current and next rank, the held token and the drop
// cursor.
type DropQueue struct {
	reg     *Registry
	arb     *Arbitrator
	physics Physics
	cues    CueSink
	log     *log.Logger

	tag        string
	maxRank    int
	limit      float64
	holdHeight float64
	cooldown   time.Duration
	settle     time.Duration

	current int
	next    int
	held    TokenID
	cursorX float64

	state     QueueState
	dropped   bool
	lastDrop  time.Duration
	promoteAt time.Duration
}

// Start rolls the current and next ranks and spawns the first held token.
// Any pending promotion from a previous session is discarded.
func (q *DropQueue) Start() {
	q.state = QueueIdle
	q.dropped = false
	q.held = NoToken
	q.cursorX = 0
	q.current = q.roll()
	q.next = q.roll()
	q.spawnHeld(q.current)
}

// Stop discards any pending promotion. The held token, if any, stays where
// it is.
func (q *DropQueue) Stop() {
	q.state = QueueIdle
}

func (q *DropQueue) roll() int {
	return q.arb.RollNextRank(q.reg.HighestBoardRank(q.tag))
}

func (q *DropQueue) spawnHeld(rank int) {
	if rank < 0 || rank > q.maxRank {
		q.held = NoToken
		q.log.Warn("no token to hold", "rank", rank)
		return
	}
	pos := q.Position()
	t := q.reg.Spawn(rank, q.tag, pos, true)
	q.held = t.ID
	q.physics.Spawn(t)
	q.physics.Hold(t.ID, pos)
}

// Position returns the hold point: the cursor X at the fixed hold height.
func (q *DropQueue) Position() core.Vec2 {
	return core.V(q.cursorX, q.holdHeight)
}

// MoveCursor sets the cursor X, clamped to the horizontal limit, and moves
// the held token with it. The held token's Y never changes.
func (q *DropQueue) MoveCursor(x float64) core.Vec2 {
	q.cursorX = core.ClampF(x, -q.limit, q.limit)
	pos := q.Position()
	if q.reg.SetPos(q.held, pos) {
		q.physics.Hold(q.held, pos)
	}
	return pos
}

// RequestDrop releases the held token if the session accepts input, the
// cooldown since the previous drop has passed and no release is pending.
func (q *DropQueue) RequestDrop(now time.Duration, accepting bool) bool {
	if !accepting || q.state == QueueReleasing {
		return false
	}
	if q.dropped && now-q.lastDrop < q.cooldown {
		return false
	}
	if !q.reg.release(q.held) {
		return false
	}

	id := q.held
	q.physics.Release(id)
	q.cues.Play(CueDrop)

	q.held = NoToken
	q.dropped = true
	q.lastDrop = now
	q.promoteAt = now + q.settle
	q.state = QueueReleasing

	q.log.Debug("drop", "token", id, "rank", q.current, "x", q.cursorX)
	return true
}

// Tick completes a pending release once the settle delay has elapsed: the
// next rank becomes current and is held, then a fresh next rank is rolled.
func (q *DropQueue) Tick(now time.Duration) {
	if q.state != QueueReleasing || now < q.promoteAt {
		return
	}
	q.state = QueueIdle
	q.current = q.next
	q.spawnHeld(q.current)
	q.next = q.roll()
}

// Current returns the rank of the token at (or about to be at) the cursor.
func (q *DropQueue) Current() int {
	return q.current
}

// Next returns the previewed rank.
func (q *DropQueue) Next() int {
	return q.next
}

// Held returns the held token, if one is at the cursor.
func (q *DropQueue) Held() (Token, bool) {
	return q.reg.Get(q.held)
}

// State returns the release state.
func (q *DropQueue) State() QueueState {
	return q.state
}
