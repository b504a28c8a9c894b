package patterns

import (
	"sort"

	"lifeserve/internal/core"
	prng "lifeserve/pkg/core"
)

const (
	// DefaultAttempts bounds the random anchors tried per pattern instance.
	DefaultAttempts = 50
	// DefaultMargin is added to a pattern's span to get the minimum anchor
	// separation within one seeding pass.
	DefaultMargin = 2
	// DefaultDisruptionCells is the number of stray cells scattered around a
	// player joining a stable board.
	DefaultDisruptionCells = 6
	// DefaultDisruptionRadius bounds how far disruption cells land from the
	// anchor.
	DefaultDisruptionRadius = 5
)

// Seeder places catalog patterns on a grid at random free anchors.
type Seeder struct {
	rng *prng.RNG

	Attempts         int
	Margin           int
	DisruptionCells  int
	DisruptionRadius int
}

// NewSeeder returns a Seeder drawing anchors from rng with default limits.
func NewSeeder(rng *prng.RNG) *Seeder {
	return &Seeder{
		rng:              rng,
		Attempts:         DefaultAttempts,
		Margin:           DefaultMargin,
		DisruptionCells:  DefaultDisruptionCells,
		DisruptionRadius: DefaultDisruptionRadius,
	}
}

// Fits reports whether every cell of p anchored at anchor is dead.
func Fits(g *core.Grid, p Pattern, anchor core.Point) bool {
	for _, off := range p.Cells {
		at := anchor.Add(off)
		if g.At(at.Row, at.Col) != core.Dead {
			return false
		}
	}
	return true
}

// Stamp writes state into every cell of p anchored at anchor.
func Stamp(g *core.Grid, p Pattern, anchor core.Point, state core.Cell) {
	for _, off := range p.Cells {
		at := anchor.Add(off)
		g.Set(at.Row, at.Col, state)
	}
}

// Seed stamps the requested number of instances of each named pattern as
// standard live cells and reports how many of each were placed. Patterns are
// visited in sorted name order so a seeded rng gives a reproducible board.
// Unknown names and exhausted attempt budgets are skipped.
func (s *Seeder) Seed(g *core.Grid, counts map[string]int) map[string]int {
	placed := make(map[string]int, len(counts))
	var accepted []core.Point
	for _, name := range sortedKeys(counts) {
		p, ok := Lookup(name)
		if !ok {
			continue
		}
		minDist := p.Span() + s.Margin
		for i := 0; i < counts[name]; i++ {
			anchor, ok := s.findAnchor(g, p, s.Attempts, accepted, minDist)
			if !ok {
				continue
			}
			Stamp(g, p, anchor, core.Live)
			accepted = append(accepted, anchor)
			placed[name]++
		}
	}
	return placed
}

// PlaceAndClaim searches for a free anchor for the spawn pattern and stamps
// it as owned by id. When disrupt is set a few stray live cells are scattered
// around the anchor to wake up a stalled board.
func (s *Seeder) PlaceAndClaim(g *core.Grid, id, attempts int, disrupt bool) (core.Point, bool) {
	p := Spawn()
	anchor, ok := s.findAnchor(g, p, attempts, nil, 0)
	if !ok {
		return core.Point{}, false
	}
	Stamp(g, p, anchor, core.Owned(id))
	if disrupt {
		s.Disrupt(g, p, anchor)
	}
	return anchor, true
}

// Disrupt scatters standalone live cells on dead cells within the disruption
// radius of anchor, avoiding the pattern's own footprint. It returns the
// number of cells added.
func (s *Seeder) Disrupt(g *core.Grid, p Pattern, anchor core.Point) int {
	footprint := make(map[core.Point]bool, len(p.Cells))
	for _, at := range p.Footprint(g, anchor) {
		footprint[at] = true
	}
	added := 0
	r := s.DisruptionRadius
	for tries := 0; added < s.DisruptionCells && tries < s.DisruptionCells*10; tries++ {
		at := g.WrapPoint(core.Point{
			Row: anchor.Row + s.rng.Between(-r, r),
			Col: anchor.Col + s.rng.Between(-r, r),
		})
		if footprint[at] || g.At(at.Row, at.Col) != core.Dead {
			continue
		}
		g.Set(at.Row, at.Col, core.Live)
		added++
	}
	return added
}

func (s *Seeder) findAnchor(g *core.Grid, p Pattern, attempts int, accepted []core.Point, minDist int) (core.Point, bool) {
	for i := 0; i < attempts; i++ {
		anchor := core.Point{Row: s.rng.IntN(g.H), Col: s.rng.IntN(g.W)}
		if !Fits(g, p, anchor) {
			continue
		}
		if tooClose(g, anchor, accepted, minDist) {
			continue
		}
		return anchor, true
	}
	return core.Point{}, false
}

func tooClose(g *core.Grid, anchor core.Point, accepted []core.Point, minDist int) bool {
	for _, other := range accepted {
		if Distance(g, anchor, other) <= minDist {
			return true
		}
	}
	return false
}

// Distance is the toroidal Chebyshev distance between two cells.
func Distance(g *core.Grid, a, b core.Point) int {
	dr := wrappedDelta(a.Row-b.Row, g.H)
	dc := wrappedDelta(a.Col-b.Col, g.W)
	if dr > dc {
		return dr
	}
	return dc
}

func wrappedDelta(d, n int) int {
	if d < 0 {
		d = -d
	}
	d %= n
	if n-d < d {
		return n - d
	}
	return d
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
