package app

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Board size bounds and fallback.
const (
	MinBoardWidth      = 20
	MinBoardHeight     = 10
	DefaultBoardWidth  = 100
	DefaultBoardHeight = 45
)

// ErrInvalidConfig marks configuration problems that a restart cannot fix.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the server parameters. Values come from the environment
// (optionally seeded from a .env file) and can be overridden by flags.
type Config struct {
	SSHAddr     string        `env:"LIFESERVE_SSH_ADDR" envDefault:":2222"`
	HostKeyPath string        `env:"LIFESERVE_HOST_KEY" envDefault:"ssh_host_key"`
	WSAddr      string        `env:"LIFESERVE_WS_ADDR"`
	Width       int           `env:"LIFESERVE_WIDTH"`
	Height      int           `env:"LIFESERVE_HEIGHT"`
	Tick        time.Duration `env:"LIFESERVE_TICK" envDefault:"100ms"`
	Cooldown    time.Duration `env:"LIFESERVE_RESPAWN_COOLDOWN" envDefault:"15s"`
	RoundLength int           `env:"LIFESERVE_ROUND_LENGTH" envDefault:"2500"`
	Passphrase  string        `env:"LIFESERVE_GOD_PASSPHRASE"`
	Seed        int64         `env:"LIFESERVE_SEED"`
	FeedbackTTL time.Duration `env:"LIFESERVE_FEEDBACK_TTL" envDefault:"3s"`
	MaxRestarts int           `env:"LIFESERVE_MAX_RESTARTS" envDefault:"5"`
	Lang        string        `env:"LIFESERVE_LANG" envDefault:"en"`
	Engine      string        `env:"LIFESERVE_ENGINE" envDefault:"life"`
}

// Load reads the optional dotenv file, then the environment, then parses
// args with fset. A missing dotenv file is not an error.
func Load(dotenv string, fset *flag.FlagSet, args []string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Bind(fset)
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fset *flag.FlagSet) {
	fset.StringVar(&c.SSHAddr, "ssh", c.SSHAddr, "SSH listen address")
	fset.StringVar(&c.HostKeyPath, "host-key", c.HostKeyPath, "SSH host key file, created when missing")
	fset.StringVar(&c.WSAddr, "ws", c.WSAddr, "websocket listen address (empty disables)")
	fset.IntVar(&c.Width, "width", c.Width, "board width (0 uses the terminal)")
	fset.IntVar(&c.Height, "height", c.Height, "board height (0 uses the terminal)")
	fset.DurationVar(&c.Tick, "tick", c.Tick, "simulation tick period")
	fset.DurationVar(&c.Cooldown, "cooldown", c.Cooldown, "respawn cooldown")
	fset.IntVar(&c.RoundLength, "round", c.RoundLength, "generations per round")
	fset.StringVar(&c.Passphrase, "god-pass", c.Passphrase, "god mode passphrase (empty disables)")
	fset.Int64Var(&c.Seed, "seed", c.Seed, "seed for board generation (0 is time based)")
	fset.DurationVar(&c.FeedbackTTL, "feedback", c.FeedbackTTL, "how long feedback banners stay visible")
	fset.IntVar(&c.MaxRestarts, "max-restarts", c.MaxRestarts, "automatic restarts after a failure")
	fset.StringVar(&c.Lang, "lang", c.Lang, "language for player messages")
	fset.StringVar(&c.Engine, "engine", c.Engine, "simulation engine")
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.SSHAddr == "":
		return fmt.Errorf("%w: ssh address is required", ErrInvalidConfig)
	case c.Tick <= 0:
		return fmt.Errorf("%w: tick period must be positive, got %s", ErrInvalidConfig, c.Tick)
	case c.Cooldown < 0:
		return fmt.Errorf("%w: respawn cooldown must not be negative", ErrInvalidConfig)
	case c.RoundLength <= 0:
		return fmt.Errorf("%w: round length must be positive, got %d", ErrInvalidConfig, c.RoundLength)
	case c.FeedbackTTL <= 0:
		return fmt.Errorf("%w: feedback duration must be positive", ErrInvalidConfig)
	case c.MaxRestarts < 0:
		return fmt.Errorf("%w: max restarts must not be negative", ErrInvalidConfig)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: board size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// TerminalSize reports the size of stdout when it is a terminal.
func TerminalSize() (cols, rows int, ok bool) {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) {
		return 0, 0, false
	}
	cols, rows, err := term.GetSize(int(fd))
	if err != nil {
		return 0, 0, false
	}
	return cols, rows, true
}

// BoardSize resolves the board dimensions: explicit values win, then the
// terminal geometry from termSize, then the defaults. Results are raised to
// the minimum board size.
func (c *Config) BoardSize(termSize func() (int, int, bool)) (int, int) {
	w, h := c.Width, c.Height
	if w == 0 || h == 0 {
		tw, th, ok := 0, 0, false
		if termSize != nil {
			tw, th, ok = termSize()
		}
		if !ok {
			tw, th = DefaultBoardWidth, DefaultBoardHeight
		}
		if w == 0 {
			w = tw
		}
		if h == 0 {
			h = th
		}
	}
	return max(w, MinBoardWidth), max(h, MinBoardHeight)
}
