package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gsarma/boltbot/internal/app"
	"github.com/gsarma/boltbot/internal/config"
	"github.com/gsarma/boltbot/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. Deferred cleanup has finished by the time
// it returns, so main may exit straight after.
func run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting boltbot server", "port", cfg.Port, "env", cfg.Env)

	if err := app.Serve(ctx, cfg); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}
