package mergedrop

import (
	"math/rand"

	"github.com/vovakirdan/mergedrop/internal/core"
)

// Bot plays by aiming at a random column and dropping as soon as the
// cursor gets there. It drives headless simulations.
type Bot struct {
	rng    *rand.Rand
	target int
	aiming bool
}

// NewBot creates a bot with its own seeded RNG.
func NewBot(seed int64) *Bot {
	return &Bot{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the input for the next tick given the current snapshot and
// the number of well columns.
func (b *Bot) Next(s Snapshot, columns int) core.InputFrame {
	in := core.NewInputFrame()
	if !s.Holding {
		return in
	}
	if !b.aiming {
		b.target = b.rng.Intn(columns)
		b.aiming = true
	}

	switch {
	case s.Column < b.target:
		in.Set(core.ActionRight)
	case s.Column > b.target:
		in.Set(core.ActionLeft)
	default:
		in.Set(core.ActionDrop)
		b.aiming = false
	}
	return in
}

// Columns returns the well width.
func (g *Game) Columns() int {
	if g.well == nil {
		return 0
	}
	return g.well.cols
}
