package scoringqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	scoringmetrics "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/metrics"
	"github.com/uptrace/bun"
)

const (
	queueName   = "scoring"
	metricsName = "river"
)

// QueueService defines the contract for scheduling rescores.
type QueueService interface {
	// EnqueueRescore schedules a rescore of a stored game at the given time.
	EnqueueRescore(ctx context.Context, gameID string, at time.Time) (int64, error)
	// CancelRescore cancels pending rescores of a game.
	CancelRescore(ctx context.Context, gameID string) error
	// GetScheduledJobs returns the rescore jobs of a game.
	GetScheduledJobs(ctx context.Context, gameID string) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service schedules rescore jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics scoringmetrics.ScoringMetrics
}

// NewService creates a River-based queue service for rescoring games.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics scoringmetrics.ScoringMetrics, scorer Scorer, publisher message.Publisher) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_scoring_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsName)

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRescoreWorker(ctxLogger, scorer, publisher))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			queueName:          {MaxWorkers: 25},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsName)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsName, time.Since(start))

	ctxLogger.Info("Scoring queue service initialized")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsName)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsName)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsName)
	s.logger.Info("Scoring queue service started")
	return nil
}

// Stop stops the River client and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsName)
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsName)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsName)
	s.logger.Info("Scoring queue service stopped")
	return nil
}

// EnqueueRescore inserts a rescore job. Identical pending jobs are merged.
func (s *Service) EnqueueRescore(ctx context.Context, gameID string, at time.Time) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_rescore", metricsName)

	ctxLogger := s.logger.With(
		attr.String("game_id", gameID),
		attr.Time("scheduled_at", at),
		attr.String("operation", "enqueue_rescore"),
	)

	if gameID == "" {
		s.metrics.RecordOperationFailure(ctx, "enqueue_rescore", metricsName)
		return 0, fmt.Errorf("game id is required")
	}

	opts := &river.InsertOpts{
		Queue: queueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
	if at.After(time.Now()) {
		opts.ScheduledAt = at
	}

	jobResult, err := s.client.Insert(ctx, RescoreGameJob{GameID: gameID}, opts)
	if err != nil {
		ctxLogger.Error("Failed to enqueue rescore job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_rescore", metricsName)
		return 0, fmt.Errorf("failed to enqueue rescore job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_rescore", metricsName)
	s.metrics.RecordOperationDuration(ctx, "enqueue_rescore", metricsName, time.Since(start))

	ctxLogger.Info("Rescore job enqueued",
		attr.Int64("job_id", jobResult.Job.ID),
		attr.Bool("duplicate", jobResult.UniqueSkippedAsDuplicate))
	return jobResult.Job.ID, nil
}

type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

// CancelRescore cancels every pending rescore job of a game.
func (s *Service) CancelRescore(ctx context.Context, gameID string) error {
	s.metrics.RecordOperationAttempt(ctx, "cancel_rescore", metricsName)

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state").
		Where("kind = ?", RescoreGameJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'game_id' = ?", gameID).
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "cancel_rescore", metricsName)
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			s.logger.Warn("Failed to cancel job", attr.Int64("job_id", job.ID), attr.Error(err))
			continue
		}
		cancelled++
	}

	if cancelled == len(jobs) {
		s.metrics.RecordOperationSuccess(ctx, "cancel_rescore", metricsName)
	} else {
		s.metrics.RecordOperationFailure(ctx, "cancel_rescore", metricsName)
	}
	s.logger.Info("Rescore jobs cancelled",
		attr.String("game_id", gameID),
		attr.Int("total_found", len(jobs)),
		attr.Int("cancelled_count", cancelled))
	return nil
}

// GetScheduledJobs returns rescore jobs of a game, earliest first.
func (s *Service) GetScheduledJobs(ctx context.Context, gameID string) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", RescoreGameJob{}.Kind()).
		Where("args->>'game_id' = ?", gameID).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			GameID:      gameID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
