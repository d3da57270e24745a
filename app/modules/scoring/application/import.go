package scoringservice

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/uptrace/bun"
)

// Import error codes.
const (
	ImportCodeUnsupported = "UNSUPPORTED_FILE"
	ImportCodeInvalid     = "INVALID_FILE"
	ImportCodeEmpty       = "EMPTY_FILE"
)

// ImportScorecard parses the uploaded file and saves it as a game. Parse
// problems are failures carrying an *ImportError.
func (s *ScoringService) ImportScorecard(ctx context.Context, req ImportRequest) (*ScoreboardResult, error) {
	importTx := func(ctx context.Context, db bun.IDB) (scoreboardOutcome, error) {
		return s.importScorecardLogic(ctx, db, req)
	}

	return unwrap(withTelemetry(s, ctx, "ImportScorecard", req.Filename, func(ctx context.Context) (scoreboardOutcome, error) {
		return runInTx(s, ctx, importTx)
	}))
}

func (s *ScoringService) importScorecardLogic(ctx context.Context, db bun.IDB, req ImportRequest) (scoreboardOutcome, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")

	fail := func(code string, err error) (scoreboardOutcome, error) {
		if s.metrics != nil {
			s.metrics.RecordImport(ctx, format, false)
		}
		return results.FailureResult[*ScoreboardResult, error](&ImportError{Filename: req.Filename, Code: code, Err: err}), nil
	}

	if len(req.Data) == 0 {
		return fail(ImportCodeEmpty, errors.New("file has no content"))
	}

	parser, err := s.parserFactory.GetParser(req.Filename)
	if err != nil {
		return fail(ImportCodeUnsupported, err)
	}

	snap, err := parser.Parse(req.Data)
	if err != nil {
		return fail(ImportCodeInvalid, err)
	}

	if req.GameID != "" {
		snap.GameID = req.GameID
	}
	if req.Name != "" {
		snap.Name = req.Name
	}
	if len(req.Options) > 0 {
		snap.Options = req.Options
	}

	s.logger.InfoContext(ctx, "Scorecard parsed",
		attr.ExtractCorrelationID(ctx),
		attr.String("filename", req.Filename),
		attr.Int("holes", len(snap.Holes)),
		attr.Int("players", len(snap.Players)),
	)

	outcome, err := s.saveGameLogic(ctx, db, snap)
	if err != nil {
		return outcome, err
	}
	if s.metrics != nil {
		s.metrics.RecordImport(ctx, format, true)
	}
	return outcome, nil
}
