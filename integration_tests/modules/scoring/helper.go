package scoringintegrationtests

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringmetrics "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/metrics"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/spicygolf/spicy-sub003/integration_tests/testutils"
)

type TestDeps struct {
	Ctx     context.Context
	Env     *testutils.TestEnvironment
	Repo    scoringdb.Repository
	BunDB   *bun.DB
	Service *scoringservice.ScoringService
}

// SetupTestScoringService returns a scoring service backed by the shared
// Postgres container, with empty tables and an empty scoring stream.
func SetupTestScoringService(t *testing.T) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	repo := scoringdb.NewRepository(env.DB)
	service := scoringservice.NewScoringService(
		repo,
		nil,
		env.Logger,
		scoringmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test_scoring_service"),
		env.DB,
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Env:     env,
		Repo:    repo,
		BunDB:   env.DB,
		Service: service,
	}
}
