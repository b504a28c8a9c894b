// Package app wires the world, the session coordinator and the transports
// into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"lifeserve/internal/game"
	"lifeserve/internal/patterns"
	"lifeserve/internal/session"
	"lifeserve/internal/stability"
	"lifeserve/internal/transport/sshd"
	"lifeserve/internal/transport/ws"
	"lifeserve/internal/ui"
)

// App runs one instance of the server.
type App struct {
	cfg      *Config
	logger   *log.Logger
	termSize func() (int, int, bool)
}

// New constructs an App.
func New(cfg *Config, logger *log.Logger) *App {
	return &App{cfg: cfg, logger: logger, termSize: TerminalSize}
}

func (a *App) logf(format string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Printf(format, args...)
}

// WorldConfig translates the server configuration into a world
// configuration.
func (a *App) WorldConfig() game.Config {
	w, h := a.cfg.BoardSize(a.termSize)
	seed := a.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return game.Config{
		Width:           w,
		Height:          h,
		Seed:            seed,
		RespawnCooldown: a.cfg.Cooldown,
		RoundLength:     a.cfg.RoundLength,
		StabilityWindow: stability.DefaultWindow,
		Patterns:        patterns.DefaultCounts(),
		Engine:          a.cfg.Engine,
	}
}

// Run serves until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	wcfg := a.WorldConfig()
	world, err := game.NewWorld(wcfg, game.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	pass, err := session.NewPassphrase(a.cfg.Passphrase, session.PassphraseCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if pass == nil {
		a.logf("no god passphrase configured, god mode disabled")
	}
	coord := session.NewCoordinator(world, session.Options{
		TickPeriod:  a.cfg.Tick,
		FeedbackTTL: a.cfg.FeedbackTTL,
		Passphrase:  pass,
		Printer:     ui.NewPrinter(a.cfg.Lang),
		Logger:      a.logger,
	})
	defer coord.Close()

	signer, err := sshd.LoadOrCreateHostKey(a.cfg.HostKeyPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sshSrv, err := sshd.New(sshd.Config{Addr: a.cfg.SSHAddr, Signer: signer, Logger: a.logger}, coord)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	a.logf("board %dx%d seed %d tick %s round %d", wcfg.Width, wcfg.Height, wcfg.Seed, a.cfg.Tick, a.cfg.RoundLength)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return coord.Run(gctx) })
	g.Go(func() error { return sshSrv.ListenAndServe(gctx) })
	if a.cfg.WSAddr != "" {
		wsSrv := ws.New(coord, a.logger)
		g.Go(func() error { return wsSrv.ListenAndServe(gctx, a.cfg.WSAddr) })
	}
	return g.Wait()
}

// Supervise calls run until it returns nil, ctx is done, or it has failed
// maxRestarts+1 times. Errors wrapping ErrInvalidConfig are not retried. A
// nil b uses exponential backoff.
func Supervise(ctx context.Context, maxRestarts int, b backoff.BackOff, logger *log.Logger, run func(context.Context) error) error {
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}
	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		err := run(ctx)
		switch {
		case err == nil:
			return struct{}{}, nil
		case ctx.Err() != nil, errors.Is(err, ErrInvalidConfig):
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRestarts)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			if logger != nil {
				logger.Printf("run %d failed: %v; restarting in %s", attempt, err, next)
			}
		}),
	)
	return err
}
