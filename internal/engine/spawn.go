package engine

import (
	"math/rand"

	"github.com/charmbracelet/log"
)

// RollCap returns the highest rank the next spawn may roll given the
// highest rank currently on the board. Boards whose apex is below 2 allow
// up to easyCap; otherwise the cap trails the apex by one. The cap never
// exceeds maxIndex. It returns -1 when there are no ranks at all.
func RollCap(boardHighest, maxIndex, easyCap int) int {
	if maxIndex < 0 {
		return -1
	}
	if boardHighest >= 2 {
		return min(maxIndex, boardHighest-1)
	}
	return min(maxIndex, max(easyCap, 0))
}

// Arbitrator chooses the rank of each newly spawned token.
type Arbitrator struct {
	maxIndex int
	easyCap  int
	rng      *rand.Rand
	log      *log.Logger
}

// NewArbitrator creates an arbitrator over ranks 0..maxIndex.
func NewArbitrator(maxIndex, easyCap int, rng *rand.Rand, logger *log.Logger) *Arbitrator {
	return &Arbitrator{
		maxIndex: maxIndex,
		easyCap:  easyCap,
		rng:      rng,
		log:      logger,
	}
}

// RollNextRank picks uniformly from [0, RollCap(boardHighest)], or returns
// -1 when the rank table is empty.
func (a *Arbitrator) RollNextRank(boardHighest int) int {
	limit := RollCap(boardHighest, a.maxIndex, a.easyCap)
	if limit < 0 {
		return -1
	}
	rank := a.rng.Intn(limit + 1)
	a.log.Debug("rolled rank", "rank", rank, "cap", limit, "board_highest", boardHighest)
	return rank
}
