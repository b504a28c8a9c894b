package patterns

import (
	"sort"

	"lifeserve/internal/core"
)

// SpawnName is the catalog key of the reserved player spawn pattern.
const SpawnName = "player"

// Pattern is a named template of live cells relative to its anchor, the
// top-left corner of its bounding box.
type Pattern struct {
	Name   string
	Cells  []core.Point
	Height int
	Width  int
}

// Span returns the larger side of the bounding box.
func (p Pattern) Span() int {
	if p.Height > p.Width {
		return p.Height
	}
	return p.Width
}

// Footprint returns the wrapped grid coordinates covered by the pattern when
// anchored at anchor.
func (p Pattern) Footprint(g *core.Grid, anchor core.Point) []core.Point {
	out := make([]core.Point, 0, len(p.Cells))
	for _, off := range p.Cells {
		out = append(out, g.WrapPoint(anchor.Add(off)))
	}
	return out
}

// newPattern derives the bounding box from the offsets.
func newPattern(name string, cells ...core.Point) Pattern {
	h, w := 0, 0
	for _, c := range cells {
		if c.Row+1 > h {
			h = c.Row + 1
		}
		if c.Col+1 > w {
			w = c.Col + 1
		}
	}
	return Pattern{Name: name, Cells: cells, Height: h, Width: w}
}

var catalog = map[string]Pattern{}

// Register adds a pattern to the catalog, replacing any pattern of the same
// name.
func Register(p Pattern) {
	if p.Name == "" || len(p.Cells) == 0 {
		return
	}
	catalog[p.Name] = p
}

// Lookup returns the pattern registered under name.
func Lookup(name string) (Pattern, bool) {
	p, ok := catalog[name]
	return p, ok
}

// Spawn returns the reserved player spawn pattern.
func Spawn() Pattern { return catalog[SpawnName] }

// Names lists the seedable pattern names in sorted order. The spawn pattern
// is excluded.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		if name == SpawnName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultCounts is the standard seeding budget for a fresh board.
func DefaultCounts() map[string]int {
	return map[string]int{
		"beacon":  4,
		"blinker": 8,
		"block":   6,
		"glider":  6,
		"lwss":    3,
		"toad":    4,
	}
}

// ScaleCounts returns counts multiplied by num/den, keeping at least one of
// every pattern that was requested.
func ScaleCounts(counts map[string]int, num, den int) map[string]int {
	out := make(map[string]int, len(counts))
	if den <= 0 {
		den = 1
	}
	for name, n := range counts {
		if n <= 0 {
			continue
		}
		scaled := n * num / den
		if scaled < 1 {
			scaled = 1
		}
		out[name] = scaled
	}
	return out
}

func init() {
	p := func(r, c int) core.Point { return core.Point{Row: r, Col: c} }

	Register(newPattern("block", p(0, 0), p(0, 1), p(1, 0), p(1, 1)))
	Register(newPattern("blinker", p(0, 0), p(0, 1), p(0, 2)))
	Register(newPattern("glider", p(0, 1), p(1, 2), p(2, 0), p(2, 1), p(2, 2)))
	Register(newPattern("lwss",
		p(0, 1), p(0, 4),
		p(1, 0),
		p(2, 0), p(2, 4),
		p(3, 0), p(3, 1), p(3, 2), p(3, 3),
	))
	Register(newPattern("beacon", p(0, 0), p(0, 1), p(1, 0), p(2, 3), p(3, 2), p(3, 3)))
	Register(newPattern("toad", p(0, 1), p(0, 2), p(0, 3), p(1, 0), p(1, 1), p(1, 2)))
	Register(newPattern(SpawnName, p(0, 1), p(1, 2), p(2, 0), p(2, 1), p(2, 2)))
}
