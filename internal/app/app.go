// Package app wires configuration, logging, metrics, and the relay core
// into one runnable unit.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LinkTsang/PicoChat/internal/config"
	"github.com/LinkTsang/PicoChat/internal/core"
	"github.com/LinkTsang/PicoChat/internal/metrics"
)

// App owns the chat server and the metrics listener.
type App struct {
	cfg     config.Config
	log     *zerolog.Logger
	server  *core.Server
	metrics *http.Server
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	a := &App{
		cfg:    cfg,
		log:    logger,
		server: core.NewServer(cfg.Addr, logger),
	}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		a.metrics = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a
}

// Run binds the listener and blocks until ctx cancellation or a fatal
// error. A bind failure is returned before any accept happens. On
// cancellation the accept loop exits promptly; live sessions drain on
// their own.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Listen(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Serve()
	})

	if a.metrics != nil {
		g.Go(func() error {
			a.log.Info().Str("addr", a.metrics.Addr).Msg("metrics listening")
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info().Msg("shutting down")
		if err := a.server.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close listener")
		}
		if a.metrics != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := a.metrics.Shutdown(shutdownCtx); err != nil {
				a.log.Warn().Err(err).Msg("shutdown metrics server")
			}
		}
		return nil
	})

	return g.Wait()
}
