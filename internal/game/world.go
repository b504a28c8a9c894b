package game

import (
	"fmt"
	"log"
	"sort"
	"time"

	"lifeserve/internal/core"
	"lifeserve/internal/patterns"
	"lifeserve/internal/stability"
	prng "lifeserve/pkg/core"
	_ "lifeserve/pkg/sims/life"
)

const (
	// DefaultRespawnCooldown is the wait between two ordinary respawns.
	DefaultRespawnCooldown = 15 * time.Second
	// DefaultRoundLength is the number of generations in a round.
	DefaultRoundLength = 2500
	// minJoinAttempts is the floor of the join placement budget.
	minJoinAttempts = 100
	// ringRadius is the largest offset tried by the respawn ring search.
	ringRadius = 5
	// movingTicks is how long the respawn marker stays on a player.
	movingTicks = 10
)

// Config controls a World.
type Config struct {
	Width  int
	Height int
	Seed   int64

	RespawnCooldown time.Duration
	RoundLength     int
	StabilityWindow int

	// Patterns is the seeding budget used at start and on every reset.
	Patterns map[string]int
	// Engine names the registered core.Sim factory that steps the grid.
	Engine string
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:           100,
		Height:          45,
		Seed:            1,
		RespawnCooldown: DefaultRespawnCooldown,
		RoundLength:     DefaultRoundLength,
		StabilityWindow: stability.DefaultWindow,
		Patterns:        patterns.DefaultCounts(),
		Engine:          "life",
	}
}

// Player is the registry record of a connected player.
type Player struct {
	ID                int
	Position          core.Point
	LastRespawn       time.Time
	Respawns          int
	GenerationsInLead int
	Wins              int

	moving int
}

// Moving reports whether the player respawned within the last few ticks.
func (p Player) Moving() bool { return p.moving > 0 }

// Standing is a leaderboard row.
type Standing struct {
	ID                int
	Cells             int
	GenerationsInLead int
	Wins              int
	// Moving is set for a few ticks after a respawn.
	Moving            bool
}

// Option customises a World.
type Option func(*World)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(w *World) { w.logger = l }
}

// World is the shared simulation context: the grid, the engine stepping it,
// the seeder, the stability detector and the player registry. World is not
// safe for concurrent use; the session coordinator serialises all access.
type World struct {
	cfg Config

	grid      *core.Grid
	engine    core.Sim
	seeder    *patterns.Seeder
	stability *stability.Detector
	rng       *prng.RNG

	players map[int]*Player
	owned   map[int]int
	leader  int
	round   int
	// seeded is the pattern count placed by the last seeding pass.
	seeded map[string]int

	now    func() time.Time
	logger *log.Logger
}

// NewWorld builds a world and seeds it with the configured patterns.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("game: invalid board size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.RoundLength <= 0 {
		cfg.RoundLength = DefaultRoundLength
	}
	if cfg.RespawnCooldown < 0 {
		cfg.RespawnCooldown = 0
	}
	if cfg.Engine == "" {
		cfg.Engine = "life"
	}
	if cfg.Patterns == nil {
		cfg.Patterns = patterns.DefaultCounts()
	}
	w := &World{
		cfg:       cfg,
		grid:      core.NewGrid(cfg.Width, cfg.Height),
		stability: stability.NewDetector(cfg.StabilityWindow),
		rng:       prng.NewRNG(cfg.Seed),
		players:   make(map[int]*Player),
		owned:     make(map[int]int),
		round:     1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.buildEngine(); err != nil {
		return nil, err
	}
	w.seeded = w.seeder.Seed(w.grid, cfg.Patterns)
	w.logf("board %dx%d seeded: %v", cfg.Width, cfg.Height, w.seeded)
	return w, nil
}

func (w *World) buildEngine() error {
	factory, ok := core.Sims()[w.cfg.Engine]
	if !ok {
		return fmt.Errorf("game: unknown engine %q", w.cfg.Engine)
	}
	generation := 0
	if w.engine != nil {
		generation = w.engine.Generation()
	}
	w.engine = factory(w.grid)
	w.engine.SetGeneration(generation)
	w.seeder = patterns.NewSeeder(prng.NewRNG(w.rng.Int63()))
	return nil
}

func (w *World) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}

// Config returns the configuration the world was built with.
func (w *World) Config() Config { return w.cfg }

// Grid exposes the board. Callers must not mutate it.
func (w *World) Grid() *core.Grid { return w.grid }

// Size returns the board dimensions.
func (w *World) Size() core.Size { return w.grid.Size() }

// Generation returns the generation within the current round.
func (w *World) Generation() int { return w.engine.Generation() }

// Round returns the 1-based number of the round in progress.
func (w *World) Round() int { return w.round }

// RoundLength returns the number of generations per round.
func (w *World) RoundLength() int { return w.cfg.RoundLength }

// Stable reports whether the stability detector considers the board stalled.
func (w *World) Stable() bool { return w.stability.Stable() }

// Seeded returns how many of each pattern the last seeding pass placed.
func (w *World) Seeded() map[string]int {
	out := make(map[string]int, len(w.seeded))
	for name, n := range w.seeded {
		out[name] = n
	}
	return out
}

// LiveCount returns the number of live cells on the board.
func (w *World) LiveCount() int { return w.grid.LiveCount() }

// Leader returns the player who owned the most cells last tick, or 0.
func (w *World) Leader() int { return w.leader }

// PlayerCount returns the number of registered players.
func (w *World) PlayerCount() int { return len(w.players) }

// OwnedCount returns the number of cells owned by id as of the last update.
func (w *World) OwnedCount(id int) int { return w.owned[id] }

// Player returns a copy of the record for id.
func (w *World) Player(id int) (Player, bool) {
	p, ok := w.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of every record ordered by id.
func (w *World) Players() []Player {
	out := make([]Player, 0, len(w.players))
	for _, id := range w.playerIDs() {
		out = append(out, *w.players[id])
	}
	return out
}

// Standings returns up to n players ordered by owned cells, most first.
func (w *World) Standings(n int) []Standing {
	out := make([]Standing, 0, len(w.players))
	for id, p := range w.players {
		out = append(out, Standing{
			ID:                id,
			Cells:             w.owned[id],
			GenerationsInLead: p.GenerationsInLead,
			Wins:              p.Wins,
			Moving:            p.Moving(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cells != out[j].Cells {
			return out[i].Cells > out[j].Cells
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RoundLeadHolder returns the player with the most generations in the lead
// this round, or 0 when nobody has led yet. Ties go to the lower id.
func (w *World) RoundLeadHolder() int {
	best, bestLead := 0, 0
	for _, id := range w.playerIDs() {
		if lead := w.players[id].GenerationsInLead; lead > bestLead {
			best, bestLead = id, lead
		}
	}
	return best
}

// Cooldown returns how long id must still wait before an ordinary respawn.
func (w *World) Cooldown(id int) time.Duration {
	p, ok := w.players[id]
	if !ok {
		return 0
	}
	remaining := w.cfg.RespawnCooldown - w.now().Sub(p.LastRespawn)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (w *World) playerIDs() []int {
	ids := make([]int, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (w *World) refreshCounts() {
	w.owned = w.grid.OwnedCounts()
}

func (w *World) joinAttempts() int {
	if n := w.grid.Size().Area() / 10; n > minJoinAttempts {
		return n
	}
	return minJoinAttempts
}
