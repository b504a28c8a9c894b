package render

import (
	"lifeserve/internal/core"
	"lifeserve/internal/ui"
)

// View size bounds in characters.
const (
	MinViewCols = 20
	MaxViewCols = 200
	MinViewRows = 5
	MaxViewRows = 60

	// DefaultCols and DefaultRows are assumed when a client reports no size.
	DefaultCols = 80
	DefaultRows = 24
)

// ViewSize derives the board window from the terminal geometry. Rows used
// by the status block are subtracted, the result is clamped to the view
// bounds and never exceeds the board.
func ViewSize(cols, rows int, board core.Size) core.Size {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	v := core.Size{
		W: clamp(cols, MinViewCols, MaxViewCols),
		H: clamp(rows-ui.StatusRows, MinViewRows, MaxViewRows),
	}
	if board.W > 0 && v.W > board.W {
		v.W = board.W
	}
	if board.H > 0 && v.H > board.H {
		v.H = board.H
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Viewport is a window onto the toroidal board.
type Viewport struct {
	Origin core.Point
	Size   core.Size
}

// Center returns the window of the given size whose middle cell is focus.
func Center(g *core.Grid, focus core.Point, size core.Size) Viewport {
	origin := g.WrapPoint(core.Point{Row: focus.Row - size.H/2, Col: focus.Col - size.W/2})
	return Viewport{Origin: origin, Size: size}
}

// Rows renders the window as one string per row, wrapping around the edges.
func (v Viewport) Rows(g *core.Grid, self int) []string {
	rows := make([]string, v.Size.H)
	line := make([]byte, v.Size.W)
	cells := make([]core.Cell, v.Size.W)
	for r := 0; r < v.Size.H; r++ {
		for c := 0; c < v.Size.W; c++ {
			cells[c] = g.At(v.Origin.Row+r, v.Origin.Col+c)
		}
		fillGlyphs(line, cells, self)
		rows[r] = string(line)
	}
	return rows
}
