package core

// Grid stores a toroidal 2D grid of cells in row-major order.
type Grid struct {
	W, H int
	data []Cell
}

// NewGrid allocates a dead grid with the given dimensions.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{W: w, H: h, data: make([]Cell, w*h)}
}

// Size returns the grid dimensions.
func (g *Grid) Size() Size { return Size{W: g.W, H: g.H} }

// Cells exposes the backing slice for read access.
func (g *Grid) Cells() []Cell { return g.data }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(row, col int) (int, int) {
	row = (row%g.H + g.H) % g.H
	col = (col%g.W + g.W) % g.W
	return row, col
}

// WrapPoint is Wrap for a Point.
func (g *Grid) WrapPoint(p Point) Point {
	r, c := g.Wrap(p.Row, p.Col)
	return Point{Row: r, Col: c}
}

// Index returns the linear slice index for the wrapped coordinates.
func (g *Grid) Index(row, col int) int {
	row, col = g.Wrap(row, col)
	return row*g.W + col
}

// At returns the state of the cell at the wrapped coordinates.
func (g *Grid) At(row, col int) Cell { return g.data[g.Index(row, col)] }

// Set stores a state at the wrapped coordinates.
func (g *Grid) Set(row, col int, c Cell) { g.data[g.Index(row, col)] = c }

// Clear fills the grid with dead cells.
func (g *Grid) Clear() {
	for i := range g.data {
		g.data[i] = Dead
	}
}

// Replace swaps in a complete next generation and returns the previous
// buffer so the caller can reuse it.
func (g *Grid) Replace(next []Cell) []Cell {
	if len(next) != len(g.data) {
		panic("core: replacement buffer has the wrong size")
	}
	prev := g.data
	g.data = next
	return prev
}

// LiveCount returns the number of cells that are not dead.
func (g *Grid) LiveCount() int {
	n := 0
	for _, c := range g.data {
		if c != Dead {
			n++
		}
	}
	return n
}

// OwnedCount returns the number of cells owned by the given player.
func (g *Grid) OwnedCount(id int) int {
	if id <= 0 {
		return 0
	}
	target := Owned(id)
	n := 0
	for _, c := range g.data {
		if c == target {
			n++
		}
	}
	return n
}

// OwnedCounts tallies owned cells per player id.
func (g *Grid) OwnedCounts() map[int]int {
	counts := make(map[int]int)
	for _, c := range g.data {
		if id, ok := c.Owner(); ok {
			counts[id]++
		}
	}
	return counts
}

// ClearOwner kills every cell owned by the given player and reports how many
// were cleared.
func (g *Grid) ClearOwner(id int) int {
	if id <= 0 {
		return 0
	}
	target := Owned(id)
	n := 0
	for i, c := range g.data {
		if c == target {
			g.data[i] = Dead
			n++
		}
	}
	return n
}
