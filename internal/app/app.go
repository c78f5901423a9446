// Package app wires configuration into the running components.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gsarma/boltbot/internal/api"
	"github.com/gsarma/boltbot/internal/bot"
	"github.com/gsarma/boltbot/internal/config"
	"github.com/gsarma/boltbot/internal/godbolt"
	"github.com/gsarma/boltbot/internal/logger"
)

// NewProvider builds the compiler service client described by cfg.
func NewProvider(cfg *config.Config) *godbolt.Client {
	return godbolt.NewClient(godbolt.Config{
		URL:          cfg.Godbolt.URL,
		Timeout:      cfg.Godbolt.Timeout,
		Retries:      cfg.Godbolt.Retries,
		RetryBackoff: cfg.Godbolt.RetryBackoff,
	})
}

// NewDispatcher builds a dispatcher on top of provider.
func NewDispatcher(cfg *config.Config, provider godbolt.Provider) *bot.Dispatcher {
	return bot.New(provider, bot.Config{
		Prefix:         cfg.Bot.Prefix,
		Cooldown:       cfg.Bot.Cooldown,
		GlobalCooldown: cfg.Bot.CooldownScope == config.CooldownGlobal,
		MaxConcurrent:  cfg.Bot.MaxConcurrent,
		PageSize:       cfg.Bot.PageSize,
	})
}

// writeSlack keeps the write deadline above the command deadline so a
// timed-out command still gets its reply out.
const writeSlack = 10 * time.Second

// Serve runs the webhook API until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	d := NewDispatcher(cfg, NewProvider(cfg))
	srv := newServer(cfg, api.NewRouter(cfg.Env, d, cfg.CommandTimeout()))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", srv.Addr, "godbolt_url", cfg.Godbolt.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CommandTimeout() + writeSlack,
		IdleTimeout:  60 * time.Second,
	}
}
