package ui

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/message"

	"lifeserve/internal/game"
)

// Glyphs used on the board and in the legend.
const (
	GlyphEmpty    = ' '
	GlyphStandard = 'o'
	GlyphSelf     = '@'
	GlyphOther    = '#'
)

// StatusRows is the number of terminal rows the status block may occupy.
const StatusRows = 4 + BoardRows + 3

// Status is everything the status block shows below the board.
type Status struct {
	Generation  int
	RoundLength int
	Round       int
	Players     int

	God    bool
	Live   int
	Stable bool

	Standings  []game.Standing
	Self       int
	LeadHolder int

	Feedback string
	Prompt   string
}

// HUD renders the text status block under a player's view.
type HUD struct {
	p     *message.Printer
	board *Overlay
}

// NewHUD constructs a HUD printing through p.
func NewHUD(p *message.Printer) *HUD {
	if p == nil {
		p = NewPrinter("en")
	}
	return &HUD{p: p, board: NewOverlay(p)}
}

// Printer returns the message printer the HUD uses.
func (h *HUD) Printer() *message.Printer { return h.p }

// Lines returns the status block in display order: legend, summary, god
// diagnostics, leaderboard, feedback, prompt and the input cue.
func (h *HUD) Lines(s Status) []string {
	lines := make([]string, 0, StatusRows)
	lines = append(lines,
		h.p.Sprintf(MsgLegend, GlyphSelf, GlyphOther, GlyphStandard),
		h.p.Sprintf(MsgSummary, strconv.Itoa(s.Generation), strconv.Itoa(s.RoundLength), strconv.Itoa(s.Round), strconv.Itoa(s.Players)),
	)
	if s.God {
		stable := ""
		if s.Stable {
			stable = h.p.Sprintf(MsgStable)
		}
		lines = append(lines, h.p.Sprintf(MsgGodDiag, humanize.Comma(int64(s.Live)), stable))
	}
	lines = append(lines, h.board.Lines(s.Standings, s.Self, s.LeadHolder)...)
	if s.Feedback != "" {
		lines = append(lines, s.Feedback)
	}
	if s.Prompt != "" {
		lines = append(lines, s.Prompt)
	}
	lines = append(lines, h.cue(s))
	return lines
}

func (h *HUD) cue(s Status) string {
	switch {
	case s.Prompt != "":
		return h.p.Sprintf(MsgCuePrompt)
	case s.God:
		return h.p.Sprintf(MsgCueGod)
	}
	return h.p.Sprintf(MsgCue)
}
