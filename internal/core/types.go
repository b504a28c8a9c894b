package core

// Cell is the state of a single grid cell. Zero is dead, Live marks an unowned
// live cell and any positive value is the id of the player owning the cell.
type Cell int32

const (
	// Dead is an empty cell.
	Dead Cell = 0
	// Live is a live cell that belongs to no player.
	Live Cell = -1
)

// Owned returns the cell state for a live cell owned by the given player.
func Owned(id int) Cell { return Cell(id) }

// Alive reports whether the cell is live, owned or not.
func (c Cell) Alive() bool { return c != Dead }

// Owner returns the owning player id for owned cells.
func (c Cell) Owner() (int, bool) {
	if c > 0 {
		return int(c), true
	}
	return 0, false
}

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Area returns the number of cells covered by the size.
func (s Size) Area() int { return s.W * s.H }

// Point addresses a cell by row and column.
type Point struct {
	Row int
	Col int
}

// Add offsets p by d.
func (p Point) Add(d Point) Point { return Point{Row: p.Row + d.Row, Col: p.Col + d.Col} }

// StepStats summarises one generation produced by a Sim.
type StepStats struct {
	Generation int
	Live       int
	Owned      map[int]int
}

// Sim defines the contract the session layer relies on to advance a world.
// Implementations step the grid they were built for in place.
type Sim interface {
	Name() string
	Size() Size
	Generation() int
	SetGeneration(n int)
	Step() StepStats
}

// Factory constructs a Sim stepping the provided grid.
type Factory func(g *Grid) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}
