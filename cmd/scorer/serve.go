package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/spicygolf/spicy-sub003/app/eventbus"
	"github.com/spicygolf/spicy-sub003/app/modules/scoring"
	scoringhandlers "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/handlers"
	"github.com/spicygolf/spicy-sub003/config"
	"github.com/spicygolf/spicy-sub003/db/bundb"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the scoring API, event handlers and rescore queue",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Provider.Logger
	tracer := obs.Provider.TracerProvider.Tracer("scoring")

	logger.InfoContext(ctx, "Starting scoring service", slog.String("addr", cfg.HTTP.Addr))

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database service: %w", err)
	}
	defer dbService.Close()

	var (
		bus    *eventbus.EventBus
		router *message.Router
	)
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewEventBus(ctx, eventbus.Options{
			URL:        cfg.NATS.URL,
			NKeySeed:   cfg.NATS.NKeySeed,
			ClientName: "spicy-scoring",
			QueueGroup: cfg.NATS.QueueGroup,
			AckWait:    cfg.NATS.AckWait,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		defer bus.Close()

		router, err = message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to create message router: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "NATS URL not set, scoring events are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpRouter := chi.NewRouter()
	httpRouter.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	httpRouter.Use(scoringhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins))
	httpRouter.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	httpRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbService.GetDB().PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	module, err := scoring.NewScoringModule(ctx, scoring.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Tracer:     tracer,
		DB:         dbService.GetDB(),
		EventBus:   bus,
		Router:     router,
		HTTPRouter: httpRouter,
		Registry:   registry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scoring module: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go module.Run(ctx, &wg)

	if router != nil {
		go func() {
			if err := router.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Message router stopped", slog.Any("error", err))
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down scoring service")
	case err = <-serveErr:
		logger.Error("HTTP server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("Error shutting down HTTP server", slog.Any("error", shutdownErr))
	}
	if closeErr := module.Close(); closeErr != nil {
		logger.Error("Error closing scoring module", slog.Any("error", closeErr))
	}
	wg.Wait()

	logger.Info("Scoring service stopped")
	return err
}
