package ui

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/message"

	"lifeserve/internal/game"
)

// BoardRows is the number of players listed on the leaderboard.
const BoardRows = 3

// Overlay draws the leaderboard section of the status block.
type Overlay struct {
	p    *message.Printer
	rows int
}

// NewOverlay constructs a leaderboard showing the top BoardRows players.
func NewOverlay(p *message.Printer) *Overlay {
	return &Overlay{p: p, rows: BoardRows}
}

// Lines renders the title and one row per standing. The requesting player is
// marked with '>' and the round lead-holder with '*'; players who just
// respawned are flagged. Nothing is drawn when there are no standings.
func (o *Overlay) Lines(standings []game.Standing, self, leadHolder int) []string {
	if len(standings) == 0 {
		return nil
	}
	if len(standings) > o.rows {
		standings = standings[:o.rows]
	}
	lines := make([]string, 0, len(standings)+1)
	lines = append(lines, o.p.Sprintf(MsgBoardTitle))
	for i, st := range standings {
		moving := ""
		if st.Moving {
			moving = o.p.Sprintf(MsgBoardMoving)
		}
		lines = append(lines, o.p.Sprintf(MsgBoardRow,
			marker(st.ID, self, leadHolder), strconv.Itoa(i+1), strconv.Itoa(st.ID),
			humanize.Comma(int64(st.Cells)), strconv.Itoa(st.GenerationsInLead), strconv.Itoa(st.Wins), moving))
	}
	return lines
}

func marker(id, self, leadHolder int) string {
	switch {
	case id == self && id == leadHolder:
		return ">*"
	case id == self:
		return "> "
	case id == leadHolder:
		return " *"
	}
	return "  "
}
