package ui

import (
	"strings"
	"testing"

	"lifeserve/internal/game"
)

func TestHUDLineOrder(t *testing.T) {
	h := NewHUD(NewPrinter("en"))
	lines := h.Lines(Status{
		Generation:  12,
		RoundLength: 2500,
		Round:       3,
		Players:     2,
		God:         true,
		Live:        12345,
		Standings: []game.Standing{
			{ID: 2, Cells: 40, GenerationsInLead: 7, Wins: 1},
			{ID: 1, Cells: 5},
		},
		Self:       1,
		LeadHolder: 2,
		Feedback:   "Respawned.",
		Prompt:     "Leave god mode? (y/n)",
	})

	want := []string{
		"@ you",
		"Generation 12/2500   Round 3   Players 2",
		"live cells 12,345",
		"Leaders",
		" * 1. player 2",
		">  2. player 1",
		"Respawned.",
		"Leave god mode? (y/n)",
		"> ",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i, frag := range want {
		if !strings.Contains(lines[i], frag) {
			t.Fatalf("line %d = %q, want it to contain %q", i, lines[i], frag)
		}
	}
	if len(lines) > StatusRows {
		t.Fatalf("status block uses %d rows, budget is %d", len(lines), StatusRows)
	}
}

func TestHUDOmitsOptionalSections(t *testing.T) {
	h := NewHUD(nil)
	lines := h.Lines(Status{Generation: 1, RoundLength: 10, Round: 1})
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want legend, summary and cue: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[2], "r respawn") {
		t.Fatalf("cue = %q", lines[2])
	}
}

func TestOverlayLimitsRows(t *testing.T) {
	o := NewOverlay(NewPrinter("en"))
	standings := []game.Standing{{ID: 1, Cells: 4000}, {ID: 2}, {ID: 3}, {ID: 4}}
	lines := o.Lines(standings, 1, 1)
	if len(lines) != BoardRows+1 {
		t.Fatalf("got %d lines, want %d", len(lines), BoardRows+1)
	}
	if !strings.HasPrefix(lines[1], ">* 1. player 1") || !strings.Contains(lines[1], "4,000 cells") {
		t.Fatalf("first row = %q", lines[1])
	}
}

func TestPrinterFallsBackToEnglish(t *testing.T) {
	p := NewPrinter("not a tag!")
	if got := p.Sprintf(MsgRespawnWait, "4"); got != "Respawn available in 4 s." {
		t.Fatalf("Sprintf = %q", got)
	}
}

func TestNumbersAreNotGrouped(t *testing.T) {
	h := NewHUD(NewPrinter("en"))
	lines := h.Lines(Status{
		Generation:  1234,
		RoundLength: 2500,
		Round:       12,
		Players:     1,
		Standings:   []game.Standing{{ID: 1234, Cells: 12000, GenerationsInLead: 1500, Wins: 1001}},
		Self:        1234,
	})
	if lines[1] != "Generation 1234/2500   Round 12   Players 1" {
		t.Fatalf("summary = %q", lines[1])
	}
	want := ">  1. player 1234   12,000 cells   1500 gens in lead   1001 wins"
	if lines[3] != want {
		t.Fatalf("row = %q, want %q", lines[3], want)
	}
}

func TestOverlayFlagsRespawningPlayer(t *testing.T) {
	o := NewOverlay(NewPrinter("en"))
	lines := o.Lines([]game.Standing{{ID: 1, Cells: 5, Moving: true}, {ID: 2, Cells: 5}}, 1, 0)
	if !strings.HasSuffix(lines[1], "(respawning)") {
		t.Fatalf("respawning row = %q", lines[1])
	}
	if strings.Contains(lines[2], "respawning") {
		t.Fatalf("idle row = %q", lines[2])
	}
}
