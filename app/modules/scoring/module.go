package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/spicygolf/spicy-sub003/app/eventbus"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
	scoringauth "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/auth"
	scoringhandlers "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/handlers"
	scoringmetrics "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/metrics"
	"github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/parsers"
	scoringqueue "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/queue"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	scoringrouter "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/router"
	"github.com/spicygolf/spicy-sub003/config"
)

// Dependencies are the shared resources the scoring module is built on.
// EventBus, Router, HTTPRouter and Registry are optional.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Tracer     trace.Tracer
	DB         *bun.DB
	EventBus   *eventbus.EventBus
	Router     *message.Router
	HTTPRouter chi.Router
	Registry   *prometheus.Registry
}

// Module represents the scoring module.
type Module struct {
	ScoringService scoringservice.Service
	ScoringRouter  *scoringrouter.ScoringRouter
	QueueService   *scoringqueue.Service
	TokenProvider  scoringauth.Provider
	cancelFunc     context.CancelFunc
	logger         *slog.Logger
}

// NewScoringModule creates and initializes a new scoring module.
func NewScoringModule(ctx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	cfg := deps.Config

	logger.InfoContext(ctx, "scoring.NewScoringModule initializing")

	// 1. Initialize Repository
	repo := scoringdb.NewRepository(deps.DB)

	// 2. Initialize Metrics
	var metrics scoringmetrics.ScoringMetrics = scoringmetrics.NewNoop()
	if deps.Registry != nil {
		promMetrics, err := scoringmetrics.NewPrometheusMetrics(deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register scoring metrics: %w", err)
		}
		metrics = promMetrics
	}

	// 3. Initialize Service
	service := scoringservice.NewScoringService(repo, parsers.NewFactory(), logger, metrics, deps.Tracer, deps.DB)
	if cfg.Scoring.RulesFile != "" {
		decls, err := config.LoadRuleSet(cfg.Scoring.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load default rule-set: %w", err)
		}
		service.WithDefaultOptions(decls)
		logger.InfoContext(ctx, "Default rule-set loaded",
			slog.String("file", cfg.Scoring.RulesFile),
			slog.Int("options", len(decls)),
		)
	}

	var publisher message.Publisher
	if deps.EventBus != nil {
		publisher = deps.EventBus
	}

	// 4. Initialize Queue
	module := &Module{ScoringService: service, logger: logger}
	var scheduler scoringhandlers.Scheduler
	if cfg.Queue.Enabled {
		queue, err := scoringqueue.NewService(ctx, deps.DB, logger, cfg.Postgres.DSN, metrics, service, publisher)
		if err != nil {
			return nil, fmt.Errorf("failed to create rescore queue: %w", err)
		}
		module.QueueService = queue
		scheduler = queue
	}

	// 5. Initialize Handlers
	handlers := scoringhandlers.NewScoringHandlers(service, scheduler, logger, deps.Tracer)

	// 6. Initialize Router
	if deps.EventBus != nil && deps.Router != nil {
		if err := deps.EventBus.EnsureStream(ctx, scoringevents.StreamName, scoringevents.Subjects); err != nil {
			return nil, fmt.Errorf("failed to ensure scoring stream: %w", err)
		}
		module.ScoringRouter = scoringrouter.NewScoringRouter(logger, deps.Router, deps.EventBus, deps.EventBus, deps.Tracer, deps.Registry)
		if err := module.ScoringRouter.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure scoring router: %w", err)
		}
	}

	// 7. Mount HTTP routes
	if cfg.JWT.Secret != "" {
		provider, err := scoringauth.NewProvider(cfg.JWT.Secret)
		if err != nil {
			return nil, fmt.Errorf("failed to create token provider: %w", err)
		}
		module.TokenProvider = provider
	} else {
		logger.WarnContext(ctx, "JWT secret not set, scoring API is unauthenticated")
	}
	if deps.HTTPRouter != nil {
		limiter := scoringhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		scoringhandlers.Routes(deps.HTTPRouter, handlers, module.TokenProvider, limiter)
	}

	return module, nil
}

// Run starts the rescore queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting scoring module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		// The queue outlives ctx so Close can drain it.
		if err := m.QueueService.Start(context.WithoutCancel(ctx)); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start rescore queue", slog.Any("error", err))
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Scoring module goroutine stopped")
}

// Close shuts down the scoring module.
func (m *Module) Close() error {
	m.logger.Info("Stopping scoring module")

	var firstErr error
	if m.QueueService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.QueueService.Stop(ctx); err != nil {
			m.logger.Error("Error stopping rescore queue", "error", err)
			firstErr = fmt.Errorf("error stopping rescore queue: %w", err)
		}
	}

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.ScoringRouter != nil {
		if err := m.ScoringRouter.Close(); err != nil {
			m.logger.Error("Error closing ScoringRouter from module", "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("error closing ScoringRouter: %w", err)
			}
		}
	}

	m.logger.Info("Scoring module stopped")
	return firstErr
}
