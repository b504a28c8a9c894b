package life

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"lifeserve/internal/core"
)

// minBandRows keeps parallel bands large enough to be worth a goroutine.
const minBandRows = 16

// Life implements Conway's Game of Life on a toroidal grid, extended with
// player ownership: a cell that lives next generation is claimed by a player
// when that player is the only owner among its live neighbours.
type Life struct {
	grid       *core.Grid
	nxt        []core.Cell
	generation int
	workers    int
}

// New returns a Life simulation stepping g in place.
func New(g *core.Grid) *Life {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Life{grid: g, nxt: make([]core.Cell, len(g.Cells())), workers: workers}
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return l.grid.Size() }

// Generation returns the number of steps taken since the last reset.
func (l *Life) Generation() int { return l.generation }

// SetGeneration overrides the generation counter, used on round resets.
func (l *Life) SetGeneration(n int) { l.generation = n }

// SetWorkers bounds the number of row bands computed concurrently.
func (l *Life) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	l.workers = n
}

type bandStats struct {
	live  int
	owned map[int]int
}

// Step advances the simulation by one generation and reports the new totals.
func (l *Life) Step() core.StepStats {
	w, h := l.grid.W, l.grid.H
	cur := l.grid.Cells()

	bands := l.workers
	if limit := h / minBandRows; bands > limit {
		bands = limit
	}
	if bands < 1 {
		bands = 1
	}
	rowsPerBand := (h + bands - 1) / bands
	results := make([]bandStats, bands)

	var eg errgroup.Group
	for b := 0; b < bands; b++ {
		start := b * rowsPerBand
		end := min(start+rowsPerBand, h)
		if start >= end {
			break
		}
		out := &results[b]
		eg.Go(func() error {
			out.owned = make(map[int]int)
			for y := start; y < end; y++ {
				for x := 0; x < w; x++ {
					c := nextCell(cur, w, h, x, y)
					l.nxt[y*w+x] = c
					if c == core.Dead {
						continue
					}
					out.live++
					if id, ok := c.Owner(); ok {
						out.owned[id]++
					}
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	l.nxt = l.grid.Replace(l.nxt)
	l.generation++

	stats := core.StepStats{Generation: l.generation, Owned: make(map[int]int)}
	for _, r := range results {
		stats.Live += r.live
		for id, n := range r.owned {
			stats.Owned[id] += n
		}
	}
	return stats
}

// nextCell computes the next state of the cell at (x, y) from the current
// generation.
func nextCell(cur []core.Cell, w, h, x, y int) core.Cell {
	neighbors := 0
	owner := 0
	multiple := false
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + w) % w
			ny := (y + dy + h) % h
			n := cur[ny*w+nx]
			if n == core.Dead {
				continue
			}
			neighbors++
			id, ok := n.Owner()
			if !ok || multiple {
				continue
			}
			if owner == 0 {
				owner = id
			} else if owner != id {
				multiple = true
			}
		}
	}
	return resolve(cur[y*w+x], neighbors, owner, multiple)
}

// resolve applies the birth/survival rule and then ownership influence.
func resolve(state core.Cell, neighbors, owner int, multiple bool) core.Cell {
	alive := state.Alive()
	if !((alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3)) {
		return core.Dead
	}
	if owner != 0 && !multiple && core.Owned(owner) != state {
		return core.Owned(owner)
	}
	if !alive {
		return core.Live
	}
	return state
}

func init() {
	core.Register("life", func(g *core.Grid) core.Sim {
		return New(g)
	})
}
