package mergedrop

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/engine"
)

const (
	cellW      = 3 // each well cell is drawn as "(g)"
	wellX      = 2 // left edge of the well border
	holdY      = 2 // row of the held token
	wellTopY   = 3 // top border row
	panelGap   = 3
	panelWidth = 24
)

// Render draws the current game state.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.session == nil {
		dst.DrawTextCentered(dst.Height()/2, "Merge Drop failed to start; see log")
		return
	}

	g.renderHUD(dst)

	needW, needH := g.layoutSize()
	if dst.Width() < needW || dst.Height() < needH {
		g.renderOverlay(dst, "Window too small", fmt.Sprintf("Need %dx%d", needW, needH))
		return
	}

	g.renderWell(dst)
	g.renderPanel(dst)

	switch {
	case g.ended:
		g.renderOverlay(dst, g.gameOverTitle(), fmt.Sprintf("Score %d  R restart  Q quit", g.session.Score()))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

func (g *Game) layoutSize() (int, int) {
	w := wellX + g.well.cols*cellW + 2 + panelGap + panelWidth
	h := wellTopY + g.well.rows + 2
	return w, h
}

func (g *Game) gameOverTitle() string {
	switch g.result.Reason {
	case engine.ReasonTimeUp:
		return "Time Up"
	case engine.ReasonOverflow:
		return "Overflow! Game Over"
	default:
		return "Game Over"
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *core.Screen) {
	snap := g.session.Snapshot()
	hud := fmt.Sprintf(" %s | Score: %d", g.Title(), snap.Score)
	if g.mode == engine.ModeTimer {
		hud += fmt.Sprintf(" | Time: %ds", int(snap.Remaining.Seconds()+0.999))
	}
	dst.DrawText(0, 0, hud)
	dst.DrawHLine(0, 1, dst.Width(), '─', core.ColorGray)
}

// dangerColor maps overflow progress to a safe, warning or pulsing alarm color.
func (g *Game) dangerColor(progress float64) core.Color {
	switch {
	case progress >= 0.8:
		if (g.tick/8)%2 == 0 {
			return core.ColorBrightRed
		}
		return core.ColorRed
	case progress >= 0.5:
		return core.ColorYellow
	case progress > 0:
		return core.ColorGreen
	default:
		return core.ColorGray
	}
}

func (g *Game) drawToken(dst *core.Screen, x, y, rank int) {
	if rank < 0 || rank >= len(g.glyphs) {
		return
	}
	c := g.colors[rank]
	dst.SetColored(x, y, '(', c)
	dst.SetColored(x+1, y, g.glyphs[rank], c)
	dst.SetColored(x+2, y, ')', c)
}

func cellX(col int) int {
	return wellX + 1 + col*cellW
}

// renderWell draws the held token, the well border, the boundary line and
// every token on the board.
func (g *Game) renderWell(dst *core.Screen) {
	snap := g.session.Snapshot()
	w := g.well
	innerW := w.cols * cellW
	lineY := wellTopY + 1 + w.lineRow
	danger := g.dangerColor(snap.Progress)

	// Held token, or a cursor marker while the next one settles
	if held, ok := g.heldRank(); ok {
		g.drawToken(dst, cellX(g.column), holdY, held)
	} else if !g.ended {
		dst.SetColored(cellX(g.column)+1, holdY, 'v', core.ColorGray)
	}

	dst.DrawBox(core.NewRect(wellX, wellTopY, innerW+2, w.rows+2))

	// Tokens stuck above a full column sit in the top border
	for col, rank := range w.waiting() {
		g.drawToken(dst, cellX(col), wellTopY, rank)
	}

	dst.SetColored(wellX-1, lineY, '>', danger)
	dst.SetColored(wellX+innerW+2, lineY, '<', danger)

	for row := 0; row < w.rows; row++ {
		y := wellTopY + 1 + row
		for col := 0; col < w.cols; col++ {
			if _, rank, ok := w.cell(col, row); ok {
				g.drawToken(dst, cellX(col), y, rank)
				continue
			}
			if row == w.lineRow {
				dst.DrawTextColored(cellX(col), y, "···", danger)
			}
		}
	}
}

func (g *Game) heldRank() (int, bool) {
	for _, b := range g.well.bodies {
		if b.held {
			return b.rank, true
		}
	}
	return 0, false
}

// renderPanel draws score, previews and the overflow gauge beside the well.
func (g *Game) renderPanel(dst *core.Screen) {
	snap := g.session.Snapshot()
	x := wellX + g.well.cols*cellW + 2 + panelGap
	y := wellTopY

	dst.DrawText(x, y, fmt.Sprintf("Score  %d", snap.Score))
	y += 2

	dst.DrawText(x, y, "Next")
	g.drawToken(dst, x+7, y, snap.Next)
	dst.DrawTextColored(x+11, y, g.RankName(snap.Next), g.rankColor(snap.Next))
	y++

	dst.DrawText(x, y, "Best")
	g.drawToken(dst, x+7, y, snap.HighestRank)
	dst.DrawTextColored(x+11, y, g.RankName(snap.HighestRank), g.rankColor(snap.HighestRank))
	y += 2

	if g.mode == engine.ModeTimer {
		dst.DrawText(x, y, fmt.Sprintf("Time   %ds", int(snap.Remaining.Seconds()+0.999)))
		y += 2
	}

	const barW = 12
	filled := int(snap.Progress*barW + 0.5)
	dst.DrawText(x, y, "Line")
	dst.DrawTextColored(x+7, y, strings.Repeat("█", filled)+strings.Repeat("░", barW-filled), g.dangerColor(snap.Progress))
	y += 2

	for _, help := range []string{"←/→ aim", "space drop", "p pause", "q quit"} {
		dst.DrawTextColored(x, y, help, core.ColorGray)
		y++
	}
}

func (g *Game) rankColor(rank int) core.Color {
	if rank < 0 || rank >= len(g.colors) {
		return core.ColorDefault
	}
	return g.colors[rank]
}

// renderOverlay draws a centered overlay message.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	boxW := max(len([]rune(line1)), len([]rune(line2))) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))
	dst.DrawTextCentered(boxY+1, line1)
	dst.DrawTextCentered(boxY+3, line2)
}
