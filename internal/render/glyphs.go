package render

import (
	"lifeserve/internal/core"
	"lifeserve/internal/ui"
)

// Glyph maps a cell to its board character as seen by player self.
func Glyph(c core.Cell, self int) byte {
	switch {
	case c == core.Dead:
		return ui.GlyphEmpty
	case c == core.Live:
		return ui.GlyphStandard
	case int(c) == self:
		return ui.GlyphSelf
	}
	return ui.GlyphOther
}

// fillGlyphs converts a row of cells into characters in buf.
func fillGlyphs(buf []byte, cells []core.Cell, self int) {
	for i, c := range cells {
		buf[i] = Glyph(c, self)
	}
}
