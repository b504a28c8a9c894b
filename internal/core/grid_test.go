package core

import (
	"context"
	"testing"
	"time"
)

func TestWrapNegativeAndOverflow(t *testing.T) {
	g := NewGrid(40, 20)
	cases := []struct {
		row, col         int
		wantRow, wantCol int
	}{
		{-1, -1, 19, 39},
		{20, 40, 0, 0},
		{-21, 81, 19, 1},
		{5, 7, 5, 7},
	}
	for _, tc := range cases {
		r, c := g.Wrap(tc.row, tc.col)
		if r != tc.wantRow || c != tc.wantCol {
			t.Fatalf("Wrap(%d,%d) = (%d,%d), want (%d,%d)", tc.row, tc.col, r, c, tc.wantRow, tc.wantCol)
		}
	}
}

func TestSetAtWrapsCoordinates(t *testing.T) {
	g := NewGrid(4, 3)
	g.Set(-1, -1, Owned(7))
	if got := g.At(2, 3); got != Owned(7) {
		t.Fatalf("At(2,3) = %d, want owner 7", got)
	}
	if g.LiveCount() != 1 {
		t.Fatalf("live count = %d, want 1", g.LiveCount())
	}
}

func TestOwnershipCounting(t *testing.T) {
	g := NewGrid(5, 5)
	g.Set(0, 0, Owned(1))
	g.Set(0, 1, Owned(1))
	g.Set(1, 1, Owned(2))
	g.Set(2, 2, Live)

	if got := g.OwnedCount(1); got != 2 {
		t.Fatalf("OwnedCount(1) = %d, want 2", got)
	}
	counts := g.OwnedCounts()
	if counts[1] != 2 || counts[2] != 1 || len(counts) != 2 {
		t.Fatalf("OwnedCounts = %v", counts)
	}
	if cleared := g.ClearOwner(1); cleared != 2 {
		t.Fatalf("ClearOwner(1) cleared %d, want 2", cleared)
	}
	if g.OwnedCount(1) != 0 {
		t.Fatal("owner 1 still has cells after ClearOwner")
	}
	if g.LiveCount() != 2 {
		t.Fatalf("live count = %d, want 2", g.LiveCount())
	}
}

func TestReplaceReturnsPreviousBuffer(t *testing.T) {
	g := NewGrid(3, 3)
	g.Set(1, 1, Live)
	next := make([]Cell, 9)
	next[0] = Owned(3)

	prev := g.Replace(next)
	if prev[4] != Live {
		t.Fatal("Replace must hand back the previous generation")
	}
	if g.At(0, 0) != Owned(3) || g.At(1, 1) != Dead {
		t.Fatal("Replace did not install the next generation")
	}
}

func TestCellOwner(t *testing.T) {
	if _, ok := Live.Owner(); ok {
		t.Fatal("standard live cell must not report an owner")
	}
	if _, ok := Dead.Owner(); ok {
		t.Fatal("dead cell must not report an owner")
	}
	if id, ok := Owned(9).Owner(); !ok || id != 9 {
		t.Fatalf("Owned(9).Owner() = %d,%v", id, ok)
	}
	if !Live.Alive() || Dead.Alive() || !Owned(1).Alive() {
		t.Fatal("Alive classification mismatch")
	}
}

func TestFixedStepRemainingNeverNegative(t *testing.T) {
	fs := NewFixedStep(100 * time.Millisecond)
	base := time.Unix(1000, 0)
	fs.now = func() time.Time { return base.Add(30 * time.Millisecond) }
	if got := fs.Remaining(base); got != 70*time.Millisecond {
		t.Fatalf("Remaining = %v, want 70ms", got)
	}
	fs.now = func() time.Time { return base.Add(250 * time.Millisecond) }
	if got := fs.Remaining(base); got != 0 {
		t.Fatalf("Remaining after overrun = %v, want 0", got)
	}
}

func TestFixedStepWaitHonoursContext(t *testing.T) {
	fs := NewFixedStep(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fs.Wait(ctx, time.Now()); err == nil {
		t.Fatal("expected context error from Wait")
	}
}

func TestFixedStepDefaults(t *testing.T) {
	if NewFixedStep(0).Period() != 100*time.Millisecond {
		t.Fatal("non-positive period should fall back to 100ms")
	}
	if NewFixedStepTPS(20).Period() != 50*time.Millisecond {
		t.Fatal("20 TPS should yield a 50ms period")
	}
}
