package engine

// ScoreLedger accumulates the session score. Stage N is the rank a merge
// promotes to, so stages run from 1 to the highest configured rank.
type ScoreLedger struct {
	total   int
	reached []bool
	frozen  bool
}

// NewScoreLedger creates a ledger tracking first-reach bonuses for stages
// 1..maxStage.
func NewScoreLedger(maxStage int) *ScoreLedger {
	if maxStage < 0 {
		maxStage = 0
	}
	return &ScoreLedger{reached: make([]bool, maxStage+1)}
}

// MergePoints returns the award for a merge into stage: 3*(stage-1), plus
// 3^stage when the stage is reached for the first time.
func MergePoints(stage int, first bool) int {
	points := 3 * (stage - 1)
	if first {
		points += pow3(stage)
	}
	return points
}

func pow3(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 3
	}
	return p
}

// AddMergeScore awards points for a merge into stage and returns the
// amount added. Out-of-range stages and frozen ledgers award nothing and
// change nothing.
func (l *ScoreLedger) AddMergeScore(stage int) int {
	if l.frozen || stage < 1 || stage >= len(l.reached) {
		return 0
	}
	first := !l.reached[stage]
	l.reached[stage] = true
	points := MergePoints(stage, first)
	l.total += points
	return points
}

// Total returns the accumulated score.
func (l *ScoreLedger) Total() int {
	return l.total
}

// FirstReached reports whether stage has already been reached this session.
func (l *ScoreLedger) FirstReached(stage int) bool {
	if stage < 1 || stage >= len(l.reached) {
		return false
	}
	return l.reached[stage]
}

// Freeze makes the ledger refuse all further additions.
func (l *ScoreLedger) Freeze() {
	l.frozen = true
}

// Frozen reports whether the ledger refuses additions.
func (l *ScoreLedger) Frozen() bool {
	return l.frozen
}

// Reset zeroes the total, forgets reached stages and unfreezes.
func (l *ScoreLedger) Reset() {
	l.total = 0
	clear(l.reached)
	l.frozen = false
}
