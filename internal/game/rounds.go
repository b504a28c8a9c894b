package game

import (
	"lifeserve/internal/patterns"
)

// reseedCellsPerPlayer approximates the room a player needs to survive the
// first generations after a reset: a 3x3 spawn times a breathing factor.
const reseedCellsPerPlayer = 9 * 20

// Tick advances the world by one generation and performs the bookkeeping
// that hangs off it: leader tracking, stability and round end.
func (w *World) Tick() TickReport {
	for _, p := range w.players {
		if p.moving > 0 {
			p.moving--
		}
	}

	stats := w.engine.Step()
	w.owned = stats.Owned
	if w.owned == nil {
		w.owned = make(map[int]int)
	}
	w.updateLeader()

	wasStable := w.stability.Stable()
	stable := w.stability.Observe(stats.Live)
	report := TickReport{
		Generation:   stats.Generation,
		Live:         stats.Live,
		Leader:       w.leader,
		Stable:       stable,
		BecameStable: stable && !wasStable,
		Destabilized: wasStable && !stable,
	}
	if report.BecameStable {
		w.logf("board stable at generation %d with %d live cells", stats.Generation, stats.Live)
	}

	if w.engine.Generation() >= w.cfg.RoundLength {
		summary := w.EndRound()
		report.Round = &summary
		report.Generation = w.engine.Generation()
		report.Live = w.grid.LiveCount()
		report.Stable = w.stability.Stable()
	}
	return report
}

// updateLeader picks the registered player owning the most cells and credits
// them with one generation in the lead. Ties go to the lower id; nobody leads
// while every player owns zero cells.
func (w *World) updateLeader() {
	leader, best := 0, 0
	for _, id := range w.playerIDs() {
		if n := w.owned[id]; n > best {
			leader, best = id, n
		}
	}
	w.leader = leader
	if leader != 0 {
		w.players[leader].GenerationsInLead++
	}
}

// EndRound scores the round and resets the board. The winner is the player
// with strictly the most generations in the lead; a tie or a round nobody
// led produces no winner.
func (w *World) EndRound() RoundSummary {
	summary := RoundSummary{
		Round:       w.round,
		Generations: w.engine.Generation(),
	}
	best, tied := 0, false
	for _, id := range w.playerIDs() {
		lead := w.players[id].GenerationsInLead
		switch {
		case lead > best:
			summary.Winner, best, tied = id, lead, false
		case lead == best && lead > 0:
			tied = true
		}
	}
	if tied {
		summary.Winner = 0
	}
	if summary.Winner != 0 {
		summary.WinnerLead = best
		w.players[summary.Winner].Wins++
		w.logf("round %d won by player %d with %d generations in the lead", w.round, summary.Winner, best)
	} else {
		w.logf("round %d ended without a winner", w.round)
	}
	w.round++
	summary.Reset = w.ResetBoard(ResetRoundEnd)
	return summary
}

// ResetBoard clears the grid, reseeds it and re-places every registered
// player with the join placement. Wins survive a round-end reset and are
// zeroed by a manual one.
func (w *World) ResetBoard(cause ResetReason) ResetResult {
	w.grid.Clear()
	w.engine.SetGeneration(0)
	w.stability.Reset()
	w.leader = 0

	result := ResetResult{OK: true, Reason: ReasonOK, Cause: cause}
	result.Placed = w.seeder.Seed(w.grid, w.reseedBudget())
	w.seeded = result.Placed

	attempts := w.joinAttempts()
	for _, id := range w.playerIDs() {
		p := w.players[id]
		p.GenerationsInLead = 0
		p.moving = 0
		if cause == ResetManual {
			p.Wins = 0
		}
		anchor, ok := w.seeder.PlaceAndClaim(w.grid, id, attempts, false)
		if !ok {
			result.Unplaced = append(result.Unplaced, id)
			continue
		}
		p.Position = anchor
		p.LastRespawn = w.now().Add(-w.cfg.RespawnCooldown)
	}
	if len(result.Unplaced) > 0 {
		result.OK = false
		result.Reason = ReasonPartial
	}
	w.refreshCounts()
	w.logf("board reset (%s): patterns=%v unplaced=%v", cause, result.Placed, result.Unplaced)
	return result
}

// reseedBudget shrinks the standard pattern budget when the registered
// players would crowd the board.
func (w *World) reseedBudget() map[string]int {
	if len(w.players)*reseedCellsPerPlayer > w.grid.Size().Area() {
		return patterns.ScaleCounts(w.cfg.Patterns, 1, 2)
	}
	return w.cfg.Patterns
}

// ReloadEngine rebuilds the stepping engine and seeder from the registry
// while leaving the grid, the generation count and every player untouched.
func (w *World) ReloadEngine() error {
	if err := w.buildEngine(); err != nil {
		return err
	}
	w.logf("engine %q reloaded at generation %d", w.cfg.Engine, w.engine.Generation())
	return nil
}
