package mergedrop

import (
	"math"
	"sort"
	"time"

	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/engine"
)

// offGrid is the row of bodies waiting above the well: the held token and
// released tokens whose entry cell is still occupied.
const offGrid = -1

type body struct {
	id     engine.TokenID
	rank   int
	col    int
	row    int
	held   bool
	moving bool // fell during the last step
}

// pair is a contact between two orthogonally adjacent tokens.
type pair struct {
	a, b engine.TokenID
	at   core.Vec2
}

// events is everything the well observed during one fall step.
type events struct {
	pairs []pair
	begin []engine.TokenID
	stay  []engine.TokenID
	end   []engine.TokenID
	moved []engine.TokenID
}

// well is a cell-grid stand-in for rigid-body physics. Tokens occupy one
// cell each and fall one row per step until they land. Boundary contact is
// any released token resting at or above the line row, or stuck above the
// well because its column is full.
//
// World X in [-limit, limit] maps to column X+limit; world Y is the row,
// growing downward, with negative rows above the well.
type well struct {
	cols, rows int
	limit      int
	lineRow    int
	interval   time.Duration

	grid     [][]engine.TokenID
	bodies   map[engine.TokenID]*body
	touching map[engine.TokenID]bool
	acc      time.Duration
	frozen   bool
}

func newWell(limit, rows, lineRow int, interval time.Duration) *well {
	w := &well{
		cols:     2*limit + 1,
		rows:     rows,
		limit:    limit,
		lineRow:  lineRow,
		interval: interval,
	}
	w.reset()
	return w
}

func (w *well) reset() {
	w.grid = make([][]engine.TokenID, w.rows)
	for r := range w.grid {
		w.grid[r] = make([]engine.TokenID, w.cols)
	}
	w.bodies = make(map[engine.TokenID]*body)
	w.touching = make(map[engine.TokenID]bool)
	w.acc = 0
	w.frozen = false
}

func (w *well) column(x float64) int {
	return core.Clamp(int(math.Round(x))+w.limit, 0, w.cols-1)
}

func (w *well) inGrid(col, row int) bool {
	return col >= 0 && col < w.cols && row >= 0 && row < w.rows
}

func (w *well) free(col, row int) bool {
	return w.inGrid(col, row) && w.grid[row][col] == engine.NoToken
}

// pos returns the world position of a body.
func (w *well) pos(b *body) core.Vec2 {
	return core.V(float64(b.col-w.limit), float64(b.row))
}

// Spawn places a body. Board tokens go to the cell nearest t.Pos, or the
// closest free cell above it in the same column, or wait above the well.
func (w *well) Spawn(t engine.Token) {
	b := &body{id: t.ID, rank: t.Rank, col: w.column(t.Pos.X), row: offGrid, held: t.Held}
	w.bodies[t.ID] = b
	if t.Held {
		return
	}

	row := core.Clamp(int(math.Round(t.Pos.Y)), 0, w.rows-1)
	for ; row >= 0; row-- {
		if w.free(b.col, row) {
			w.place(b, b.col, row)
			return
		}
	}
}

func (w *well) place(b *body, col, row int) {
	if w.inGrid(b.col, b.row) && w.grid[b.row][b.col] == b.id {
		w.grid[b.row][b.col] = engine.NoToken
	}
	b.col, b.row = col, row
	if w.inGrid(col, row) {
		w.grid[row][col] = b.id
	}
}

// Despawn removes a body.
func (w *well) Despawn(id engine.TokenID) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	if w.inGrid(b.col, b.row) && w.grid[b.row][b.col] == id {
		w.grid[b.row][b.col] = engine.NoToken
	}
	delete(w.bodies, id)
	delete(w.touching, id)
}

// Hold moves a held body along the hold row.
func (w *well) Hold(id engine.TokenID, pos core.Vec2) {
	if b, ok := w.bodies[id]; ok && b.held {
		b.col = w.column(pos.X)
	}
}

// Release lets a held body fall from above its column.
func (w *well) Release(id engine.TokenID) {
	if b, ok := w.bodies[id]; ok {
		b.held = false
		b.row = offGrid
	}
}

// Impulse nudges a fresh token one column sideways when the push is strong
// enough and the neighbouring cell is free.
func (w *well) Impulse(id engine.TokenID, v core.Vec2) {
	b, ok := w.bodies[id]
	if !ok || b.row < 0 || math.Abs(v.X) < 0.25 {
		return
	}
	dir := 1
	if v.X < 0 {
		dir = -1
	}
	if w.free(b.col+dir, b.row) {
		w.place(b, b.col+dir, b.row)
	}
}

// Freeze stops every body where it is.
func (w *well) Freeze() {
	w.frozen = true
}

// Advance accumulates dt and runs a fall step once an interval has
// elapsed. At most one step runs per call so no contact transition is lost.
func (w *well) Advance(dt time.Duration) events {
	if w.frozen {
		return events{}
	}
	w.acc += dt
	if w.acc < w.interval {
		return events{}
	}
	w.acc -= w.interval
	return w.step()
}

// ids returns body IDs in ascending order so steps are deterministic.
func (w *well) ids() []engine.TokenID {
	out := make([]engine.TokenID, 0, len(w.bodies))
	for id := range w.bodies {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *well) step() events {
	var ev events
	for _, b := range w.bodies {
		b.moving = false
	}

	// Fall: bottom-up so a column drops as a unit, then let waiting tokens in.
	for row := w.rows - 2; row >= 0; row-- {
		for col := 0; col < w.cols; col++ {
			id := w.grid[row][col]
			if id == engine.NoToken {
				continue
			}
			b := w.bodies[id]
			if w.free(col, row+1) {
				w.place(b, col, row+1)
				b.moving = true
				ev.moved = append(ev.moved, id)
			}
		}
	}
	for _, id := range w.ids() {
		b := w.bodies[id]
		if b.held || b.row != offGrid {
			continue
		}
		if w.free(b.col, 0) {
			w.place(b, b.col, 0)
			b.moving = true
			ev.moved = append(ev.moved, id)
		}
	}

	// Equal-rank neighbours touch; each pair is reported once.
	for _, id := range w.ids() {
		b := w.bodies[id]
		if !w.inGrid(b.col, b.row) {
			continue
		}
		for _, d := range [][2]int{{1, 0}, {0, 1}} {
			nc, nr := b.col+d[0], b.row+d[1]
			if !w.inGrid(nc, nr) {
				continue
			}
			other := w.grid[nr][nc]
			if other == engine.NoToken || w.bodies[other].rank != b.rank {
				continue
			}
			at := w.pos(b).Mid(w.pos(w.bodies[other]))
			ev.pairs = append(ev.pairs, pair{a: id, b: other, at: at})
		}
	}

	// Boundary line contacts.
	now := make(map[engine.TokenID]bool)
	for _, id := range w.ids() {
		b := w.bodies[id]
		if b.held || b.moving {
			continue
		}
		if b.row <= w.lineRow {
			now[id] = true
		}
	}
	for _, id := range w.ids() {
		switch {
		case now[id] && w.touching[id]:
			ev.stay = append(ev.stay, id)
		case now[id]:
			ev.begin = append(ev.begin, id)
		case w.touching[id]:
			ev.end = append(ev.end, id)
		}
	}
	// Despawned bodies already left the touching set.
	w.touching = now

	return ev
}

// cell returns the token at a grid cell.
func (w *well) cell(col, row int) (engine.TokenID, int, bool) {
	if !w.inGrid(col, row) {
		return engine.NoToken, 0, false
	}
	id := w.grid[row][col]
	if id == engine.NoToken {
		return engine.NoToken, 0, false
	}
	return id, w.bodies[id].rank, true
}

// waiting returns released bodies stuck above the well, by column.
func (w *well) waiting() map[int]int {
	out := make(map[int]int)
	for _, b := range w.bodies {
		if !b.held && b.row == offGrid {
			out[b.col] = b.rank
		}
	}
	return out
}

// height returns the number of occupied cells in a column.
func (w *well) height(col int) int {
	n := 0
	for row := 0; row < w.rows; row++ {
		if w.grid[row][col] != engine.NoToken {
			n++
		}
	}
	return n
}
