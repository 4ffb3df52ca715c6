package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo"

	"StockBoard/internal/usecase"
	"StockBoard/pkg/config"
	xhttp "StockBoard/pkg/http"
	"StockBoard/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	mongo   *mongo.Client
	sweeper *usecase.Sweeper
	warmer  *usecase.UniverseWarmer
	handler xhttp.Handler

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *logger.Logger,
	mongoClient *mongo.Client,
	sweeper *usecase.Sweeper,
	warmer *usecase.UniverseWarmer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		mongo:   mongoClient,
		sweeper: sweeper,
		warmer:  warmer,
		handler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	if a.sweeper != nil {
		if err := a.sweeper.Start(); err != nil {
			a.log.Error("sweeper start failed", logger.Error(err))
			return err
		}
	}

	if a.warmer != nil {
		go func() {
			if err := a.warmer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("universe warmup failed", logger.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", logger.Error(err))
		}
	}

	if a.mongo != nil {
		if err := a.mongo.Disconnect(shutdownCtx); err != nil {
			a.log.Warn("mongo disconnect error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
