package life

import (
	"slices"
	"testing"

	"lifeserve/internal/core"
	prng "lifeserve/pkg/core"
)

func liveSet(g *core.Grid) map[core.Point]core.Cell {
	out := make(map[core.Point]core.Cell)
	for i, c := range g.Cells() {
		if c != core.Dead {
			out[core.Point{Row: i / g.W, Col: i % g.W}] = c
		}
	}
	return out
}

func expectLive(t *testing.T, g *core.Grid, want ...core.Point) {
	t.Helper()
	got := liveSet(g)
	if len(got) != len(want) {
		t.Fatalf("live cells = %v, want %v", got, want)
	}
	for _, p := range want {
		if _, ok := got[p]; !ok {
			t.Fatalf("cell %v not live; live cells = %v", p, got)
		}
	}
}

func TestBlinkerOscillation(t *testing.T) {
	g := core.NewGrid(40, 20)
	life := New(g)
	g.Set(5, 5, core.Live)
	g.Set(5, 6, core.Live)
	g.Set(5, 7, core.Live)

	life.Step()
	expectLive(t, g, core.Point{Row: 4, Col: 6}, core.Point{Row: 5, Col: 6}, core.Point{Row: 6, Col: 6})

	life.Step()
	expectLive(t, g, core.Point{Row: 5, Col: 5}, core.Point{Row: 5, Col: 6}, core.Point{Row: 5, Col: 7})

	if life.Generation() != 2 {
		t.Fatalf("generation = %d, want 2", life.Generation())
	}
}

func TestBlockIsStillLife(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	for _, p := range []core.Point{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 4}} {
		g.Set(p.Row, p.Col, core.Live)
	}
	before := slices.Clone(g.Cells())
	for i := 0; i < 5; i++ {
		life.Step()
	}
	if !slices.Equal(before, g.Cells()) {
		t.Fatal("block changed under Step")
	}
}

func TestNeighborsWrapAcrossCorner(t *testing.T) {
	g := core.NewGrid(40, 20)
	life := New(g)
	// The three cells diagonally, horizontally and vertically across the
	// corner from (0,0) are its neighbours only on a torus.
	g.Set(19, 39, core.Live)
	g.Set(0, 39, core.Live)
	g.Set(19, 0, core.Live)

	life.Step()
	if !g.At(0, 0).Alive() {
		t.Fatal("corner cell should be born from wrapped neighbours")
	}
}

func TestSingleOwnerClaimsBirth(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	g.Set(1, 0, core.Owned(5))
	g.Set(1, 1, core.Owned(5))
	g.Set(1, 2, core.Owned(5))

	life.Step()
	if got := g.At(0, 1); got != core.Owned(5) {
		t.Fatalf("born cell = %d, want owned by 5", got)
	}
	if got := g.At(2, 1); got != core.Owned(5) {
		t.Fatalf("born cell = %d, want owned by 5", got)
	}
}

func TestTwoOwnersYieldStandardCell(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	g.Set(1, 0, core.Owned(5))
	g.Set(1, 1, core.Owned(5))
	g.Set(1, 2, core.Owned(6))

	life.Step()
	if got := g.At(0, 1); got != core.Live {
		t.Fatalf("contested birth = %d, want standard live", got)
	}
}

func TestStandardNeighborsDoNotBlockClaim(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	// Block with two owned and two standard cells: every survivor sees a
	// single owner among its neighbours.
	g.Set(3, 3, core.Owned(3))
	g.Set(3, 4, core.Owned(3))
	g.Set(4, 3, core.Live)
	g.Set(4, 4, core.Live)

	life.Step()
	if got := g.OwnedCount(3); got != 4 {
		t.Fatalf("owned cells = %d, want whole block claimed", got)
	}
}

func TestOwnedCellSwitchesToSoleNeighborOwner(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	g.Set(3, 3, core.Owned(1))
	g.Set(3, 4, core.Owned(2))
	g.Set(4, 3, core.Owned(2))
	g.Set(4, 4, core.Owned(2))

	life.Step()
	if got := g.At(3, 3); got != core.Owned(2) {
		t.Fatalf("cell (3,3) = %d, want taken over by 2", got)
	}
	// Survivors with mixed owners around them keep their state.
	if got := g.At(4, 4); got != core.Owned(2) {
		t.Fatalf("cell (4,4) = %d, want to keep owner 2", got)
	}
}

func TestResolveRule(t *testing.T) {
	cases := []struct {
		name      string
		state     core.Cell
		neighbors int
		owner     int
		multiple  bool
		want      core.Cell
	}{
		{"dead stays dead", core.Dead, 2, 0, false, core.Dead},
		{"birth", core.Dead, 3, 0, false, core.Live},
		{"owned birth", core.Dead, 3, 4, false, core.Owned(4)},
		{"contested birth", core.Dead, 3, 4, true, core.Live},
		{"survive", core.Live, 2, 0, false, core.Live},
		{"overcrowded", core.Owned(2), 4, 2, false, core.Dead},
		{"lonely", core.Owned(2), 1, 2, false, core.Dead},
		{"keeps own owner", core.Owned(2), 3, 2, false, core.Owned(2)},
		{"claimed survivor", core.Live, 3, 7, false, core.Owned(7)},
	}
	for _, tc := range cases {
		if got := resolve(tc.state, tc.neighbors, tc.owner, tc.multiple); got != tc.want {
			t.Fatalf("%s: resolve = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestParallelBandsMatchSerial(t *testing.T) {
	rng := prng.NewRNG(21)
	serial := core.NewGrid(50, 70)
	parallel := core.NewGrid(50, 70)
	for i := range serial.Cells() {
		var c core.Cell
		switch rng.IntN(6) {
		case 0:
			c = core.Live
		case 1:
			c = core.Owned(1 + rng.IntN(3))
		}
		serial.Set(i/50, i%50, c)
		parallel.Set(i/50, i%50, c)
	}

	a := New(serial)
	a.SetWorkers(1)
	b := New(parallel)
	b.SetWorkers(4)
	for i := 0; i < 10; i++ {
		sa := a.Step()
		sb := b.Step()
		if sa.Live != sb.Live {
			t.Fatalf("step %d: live %d vs %d", i, sa.Live, sb.Live)
		}
	}
	if !slices.Equal(serial.Cells(), parallel.Cells()) {
		t.Fatal("parallel step diverged from serial step")
	}
}

func TestStepStats(t *testing.T) {
	g := core.NewGrid(10, 10)
	life := New(g)
	g.Set(3, 3, core.Owned(8))
	g.Set(3, 4, core.Owned(8))
	g.Set(4, 3, core.Owned(8))
	g.Set(4, 4, core.Owned(8))
	g.Set(7, 7, core.Live)

	stats := life.Step()
	if stats.Generation != 1 || stats.Live != 4 || stats.Owned[8] != 4 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Live != g.LiveCount() {
		t.Fatal("stats disagree with the grid")
	}
}

func TestRegisteredFactory(t *testing.T) {
	f, ok := core.Sims()["life"]
	if !ok {
		t.Fatal("life factory not registered")
	}
	sim := f(core.NewGrid(4, 4))
	if sim.Name() != "life" || sim.Size() != (core.Size{W: 4, H: 4}) {
		t.Fatalf("factory built %s %+v", sim.Name(), sim.Size())
	}
}
