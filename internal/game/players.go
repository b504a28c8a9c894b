package game

import (
	"lifeserve/internal/core"
	"lifeserve/internal/patterns"
)

// Join adds a player, injecting a disruption when the board has stalled.
func (w *World) Join(id int) PlacementResult {
	return w.AddPlayer(id, w.Stable())
}

// AddPlayer claims a free spawn location for id and registers the player.
// The new player may respawn immediately.
func (w *World) AddPlayer(id int, injectDisruption bool) PlacementResult {
	if id <= 0 {
		return PlacementResult{Reason: ReasonUnknownPlayer}
	}
	if _, exists := w.players[id]; exists {
		return PlacementResult{Reason: ReasonInternal}
	}
	attempts := w.joinAttempts()
	anchor, ok := w.seeder.PlaceAndClaim(w.grid, id, attempts, injectDisruption)
	if !ok {
		w.logf("player %d: no free spawn after %d attempts", id, attempts)
		return PlacementResult{Reason: ReasonNoSpace, Attempts: attempts}
	}
	w.players[id] = &Player{
		ID:          id,
		Position:    anchor,
		LastRespawn: w.now().Add(-w.cfg.RespawnCooldown),
	}
	if injectDisruption {
		w.stability.Reset()
	}
	w.refreshCounts()
	w.logf("player %d joined at (%d,%d) disruption=%t", id, anchor.Row, anchor.Col, injectDisruption)
	return PlacementResult{OK: true, Reason: ReasonOK, Anchor: anchor, Attempts: attempts, Disrupt: injectDisruption}
}

// RemovePlayer clears every cell owned by id and deletes the record. It is a
// no-op for unknown ids and returns the number of cells cleared.
func (w *World) RemovePlayer(id int) int {
	cleared := w.grid.ClearOwner(id)
	if _, ok := w.players[id]; ok {
		delete(w.players, id)
		w.logf("player %d removed, %d cells cleared", id, cleared)
	}
	delete(w.owned, id)
	if w.leader == id {
		w.leader = 0
	}
	return cleared
}

// RespawnPlayer moves id's pattern next to its last spawn point. In god mode
// the cooldown is skipped and the whole board is reset instead.
func (w *World) RespawnPlayer(id int, godMode bool) RespawnResult {
	p, ok := w.players[id]
	if !ok {
		return RespawnResult{Reason: ReasonUnknownPlayer}
	}
	if godMode {
		reset := w.ResetBoard(ResetManual)
		res := RespawnResult{OK: reset.OK, Reason: reset.Reason, Reset: &reset}
		if after, ok := w.players[id]; ok {
			res.Position = after.Position
		}
		return res
	}
	if remaining := w.Cooldown(id); remaining > 0 {
		return RespawnResult{Reason: ReasonCooldown, Remaining: remaining}
	}

	w.grid.ClearOwner(id)
	anchor, found := w.ringSearch(p.Position)
	if !found {
		w.refreshCounts()
		w.logf("player %d: respawn ring search found no space near (%d,%d)", id, p.Position.Row, p.Position.Col)
		return RespawnResult{Reason: ReasonNoSpace, Position: p.Position}
	}
	patterns.Stamp(w.grid, patterns.Spawn(), anchor, core.Owned(id))
	p.Position = anchor
	p.LastRespawn = w.now()
	p.Respawns++
	p.moving = movingTicks
	w.refreshCounts()
	w.logf("player %d respawned at (%d,%d), respawn #%d", id, anchor.Row, anchor.Col, p.Respawns)
	return RespawnResult{OK: true, Reason: ReasonOK, Position: anchor}
}

// ringSearch looks for a free spawn footprint at growing offsets in the
// eight compass directions around last.
func (w *World) ringSearch(last core.Point) (core.Point, bool) {
	spawn := patterns.Spawn()
	for mag := 1; mag <= ringRadius; mag++ {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				at := w.grid.WrapPoint(core.Point{Row: last.Row + dr*mag, Col: last.Col + dc*mag})
				if patterns.Fits(w.grid, spawn, at) {
					return at, true
				}
			}
		}
	}
	return core.Point{}, false
}
