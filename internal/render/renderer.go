package render

import (
	"errors"
	"strings"

	"lifeserve/internal/core"
	"lifeserve/internal/game"
	"lifeserve/internal/patterns"
	"lifeserve/internal/ui"
)

// ErrPlayerNotFound is returned when a frame is requested for a player that
// has no registry record.
var ErrPlayerNotFound = errors.New("render: player not found")

// ClearScreen homes the cursor and clears the terminal before each frame.
const ClearScreen = "\x1b[H\x1b[2J"

const newline = "\r\n"

// Request describes one frame for one player.
type Request struct {
	PlayerID   int
	Cols, Rows int
	GodMode    bool
	// Feedback and Prompt are already localised.
	Feedback string
	Prompt   string
}

// Renderer composes frames from the world state. It only reads the world.
type Renderer struct {
	hud *ui.HUD
}

// NewRenderer constructs a renderer that draws its status block with hud.
func NewRenderer(hud *ui.HUD) *Renderer {
	if hud == nil {
		hud = ui.NewHUD(nil)
	}
	return &Renderer{hud: hud}
}

// Render returns the full frame for req: the board window centred on the
// player followed by the status block.
func (r *Renderer) Render(w *game.World, req Request) (string, error) {
	p, ok := w.Player(req.PlayerID)
	if !ok {
		return "", ErrPlayerNotFound
	}
	g := w.Grid()
	view := ViewSize(req.Cols, req.Rows, g.Size())
	vp := Center(g, focusOf(p.Position), view)

	status := ui.Status{
		Generation:  w.Generation(),
		RoundLength: w.RoundLength(),
		Round:       w.Round(),
		Players:     w.PlayerCount(),
		God:         req.GodMode,
		Standings:   w.Standings(ui.BoardRows),
		Self:        req.PlayerID,
		LeadHolder:  w.RoundLeadHolder(),
		Feedback:    req.Feedback,
		Prompt:      req.Prompt,
	}
	if req.GodMode {
		status.Live = w.LiveCount()
		status.Stable = w.Stable()
	}

	var b strings.Builder
	b.Grow((view.W + len(newline)) * (view.H + ui.StatusRows))
	b.WriteString(ClearScreen)
	for _, row := range vp.Rows(g, req.PlayerID) {
		b.WriteString(row)
		b.WriteString(newline)
	}
	lines := r.hud.Lines(status)
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString(newline)
		}
	}
	return b.String(), nil
}

// focusOf returns the middle of the spawn pattern anchored at anchor.
func focusOf(anchor core.Point) core.Point {
	spawn := patterns.Spawn()
	return core.Point{Row: anchor.Row + spawn.Height/2, Col: anchor.Col + spawn.Width/2}
}
