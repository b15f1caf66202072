package mergedrop

import (
	"strings"

	"github.com/vovakirdan/mergedrop/internal/engine"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick        uint64
	Mode        string // "classic" or "timer"
	State       string // engine session state
	Score       int
	Current     int
	Next        int
	Column      int
	Holding     bool
	Tokens      int
	HighestRank int
	Progress    float64
	Merges      int
	Drops       int
	Board       string // one line per well row, '.' for empty cells
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	if g.session == nil {
		return Snapshot{}
	}
	s := g.session.Snapshot()
	return Snapshot{
		Tick:        g.tick,
		Mode:        g.mode.String(),
		State:       s.State.String(),
		Score:       s.Score,
		Current:     s.Current,
		Next:        s.Next,
		Column:      g.column,
		Holding:     s.Holding,
		Tokens:      s.Tokens,
		HighestRank: s.HighestRank,
		Progress:    s.Progress,
		Merges:      g.merges,
		Drops:       g.drops,
		Board:       g.boardString(),
	}
}

// Result returns the finished session's outcome.
func (g *Game) Result() (engine.Result, bool) {
	return g.result, g.ended
}

func (g *Game) boardString() string {
	var sb strings.Builder
	for row := 0; row < g.well.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < g.well.cols; col++ {
			if _, rank, ok := g.well.cell(col, row); ok {
				sb.WriteRune(g.glyphs[rank])
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
