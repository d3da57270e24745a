package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/spicygolf/spicy-sub003/app/eventbus"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
	"github.com/spicygolf/spicy-sub003/config"
	"github.com/spicygolf/spicy-sub003/db/bundb"
	"github.com/spicygolf/spicy-sub003/integration_tests/containers"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	PgConnStr     string
	NatsURL       string
	DB            *bun.DB
	DBService     *bundb.DBService
	EventBus      *eventbus.EventBus
	JetStream     jetstream.JetStream
	Config        *config.Config
	Logger        *slog.Logger
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvErr  error
	sharedEnvOnce sync.Once
)

// GetOrCreateTestEnv returns the environment shared by every test of the
// process, starting the containers on first use. Tests are skipped when
// containers cannot be started, e.g. without a Docker daemon.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = NewTestEnvironment()
	})
	if sharedEnvErr != nil {
		t.Skipf("integration environment unavailable: %v", sharedEnvErr)
	}
	if err := sharedEnv.CheckHealth(); err != nil {
		t.Fatalf("integration environment unhealthy: %v", err)
	}
	return sharedEnv
}

// ShutdownSharedEnv tears down the shared environment, if one was started.
func ShutdownSharedEnv() {
	if sharedEnv != nil {
		sharedEnv.Cleanup()
	}
}

// NewTestEnvironment starts Postgres and NATS containers, migrates the
// database and connects the event bus.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("TEST_VERBOSE") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        logger,
	}
	if err := env.setupContainers(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

// setupContainers initializes all containers and connections
func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.PgConnStr = pgConnStr

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL, QueueGroup: "scoring-test"},
	}

	dbService, err := bundb.NewBunDBService(ctx, env.Config.Postgres, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	env.DBService = dbService
	env.DB = dbService.GetDB()

	if err := runMigrations(ctx, env.DB, pgConnStr); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, eventbus.Options{
		URL:        natsURL,
		ClientName: "scoring-integration-tests",
		QueueGroup: env.Config.NATS.QueueGroup,
		AckWait:    5 * time.Second,
	}, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = eventBus
	env.JetStream = eventBus.JetStream()

	if err := eventBus.EnsureStream(ctx, scoringevents.StreamName, scoringevents.Subjects); err != nil {
		return fmt.Errorf("failed to create scoring stream: %w", err)
	}

	log.Println("Integration environment ready")
	return nil
}

// CheckHealth verifies the database and NATS connections are still usable.
func (env *TestEnvironment) CheckHealth() error {
	ctx, cancel := context.WithTimeout(env.Ctx, 5*time.Second)
	defer cancel()

	if err := env.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if !env.EventBus.Conn().IsConnected() {
		return fmt.Errorf("nats: connection status %v", env.EventBus.Conn().Status())
	}
	return nil
}

// Reset empties the scoring tables, the River queue and the scoring stream.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := CleanScoringTables(env.Ctx, env.DB); err != nil {
		t.Fatalf("Failed to clean scoring tables: %v", err)
	}
	if err := env.ResetJetStreamState(env.Ctx, scoringevents.StreamName); err != nil {
		t.Fatalf("Failed to reset JetStream: %v", err)
	}
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DBService != nil {
		if err := env.DBService.Close(); err != nil {
			log.Printf("Error closing DB: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
	log.Println("Integration environment cleaned up")
}
