// Command lifeserve runs the shared Game of Life board and serves it to
// terminals over SSH and, optionally, websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifeserve/internal/app"
	platformotel "lifeserve/internal/platform/otel"
)

func main() {
	logger := log.New(os.Stderr, "lifeserve ", log.LstdFlags|log.Lmsgprefix)
	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	cfg, err := app.Load(".env", flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := platformotel.Setup(ctx, "lifeserve")
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Printf("otel shutdown: %v", err)
		}
	}()

	err = app.Supervise(ctx, cfg.MaxRestarts, nil, logger, app.New(cfg, logger).Run)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Printf("shut down")
	return nil
}
