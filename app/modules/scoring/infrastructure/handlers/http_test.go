package scoringhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringauth "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/auth"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBody = `{
  "gameId": "game-1",
  "holes": [{"hole": "1", "par": 4, "allocation": 1}],
  "players": [{"id": "alice", "scores": {"1": {"gross": 4}}}]
}`

func newTestRouter(svc *FakeScoringService, scheduler Scheduler, provider scoringauth.Provider) http.Handler {
	r := chi.NewRouter()
	Routes(r, newTestHandlers(svc, scheduler), provider, nil)
	return r
}

func TestHTTPScoringRoutes(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*FakeScoringService)
		method     string
		url        string
		body       string
		wantStatus int
		wantTrace  []string
		verify     func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name:       "score snapshot",
			method:     http.MethodPost,
			url:        "/api/scoring/scoreboards",
			body:       snapshotBody,
			wantStatus: http.StatusOK,
			wantTrace:  []string{"ScoreSnapshot"},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got scoringservice.ScoreboardResult
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, "game-1", got.GameID)
			},
		},
		{
			name:       "score and save snapshot",
			method:     http.MethodPost,
			url:        "/api/scoring/scoreboards?save=true",
			body:       snapshotBody,
			wantStatus: http.StatusCreated,
			wantTrace:  []string{"SaveGame"},
		},
		{
			name:       "snapshot failing the schema",
			method:     http.MethodPost,
			url:        "/api/scoring/scoreboards",
			body:       `{"holes": [{"hole": "1", "par": 0}], "players": []}`,
			wantStatus: http.StatusBadRequest,
			wantTrace:  []string{},
		},
		{
			name: "trace snapshot",
			setup: func(f *FakeScoringService) {
				f.TraceSnapshotFunc = func(ctx context.Context, snap *scoringdomain.GameSnapshot) ([]scoringdomain.StageResult, error) {
					return []scoringdomain.StageResult{{Stage: "points"}, {Stage: "cumulative"}}, nil
				}
			},
			method:     http.MethodPost,
			url:        "/api/scoring/traces",
			body:       snapshotBody,
			wantStatus: http.StatusOK,
			wantTrace:  []string{"TraceSnapshot"},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got []stageResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				require.Len(t, got, 2)
				assert.Equal(t, "cumulative", got[1].Stage)
			},
		},
		{
			name: "list games with limit",
			setup: func(f *FakeScoringService) {
				f.ListGamesFunc = func(ctx context.Context, limit int) ([]scoringdb.GameSummary, error) {
					assert.Equal(t, 5, limit)
					return []scoringdb.GameSummary{{ID: "game-1", Players: 2}}, nil
				}
			},
			method:     http.MethodGet,
			url:        "/api/scoring/games?limit=5",
			wantStatus: http.StatusOK,
			wantTrace:  []string{"ListGames"},
		},
		{
			name:       "list games with bad limit",
			method:     http.MethodGet,
			url:        "/api/scoring/games?limit=many",
			wantStatus: http.StatusBadRequest,
			wantTrace:  []string{},
		},
		{
			name: "scoreboard of unknown game",
			setup: func(f *FakeScoringService) {
				f.GetScoreboardFunc = func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
					return nil, scoringservice.ErrScoreboardNotFound
				}
			},
			method:     http.MethodGet,
			url:        "/api/scoring/games/nope/scoreboard",
			wantStatus: http.StatusNotFound,
			wantTrace:  []string{"GetScoreboard"},
		},
		{
			name:       "running totals chart",
			method:     http.MethodGet,
			url:        "/api/scoring/games/game-1/chart.png",
			wantStatus: http.StatusOK,
			wantTrace:  []string{"RenderRunningTotals"},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
			},
		},
		{
			name:       "delete game",
			method:     http.MethodDelete,
			url:        "/api/scoring/games/game-1",
			wantStatus: http.StatusNoContent,
			wantTrace:  []string{"DeleteGame"},
		},
		{
			name: "delete unknown game",
			setup: func(f *FakeScoringService) {
				f.DeleteGameFunc = func(ctx context.Context, gameID string) error {
					return scoringservice.ErrGameNotFound
				}
			},
			method:     http.MethodDelete,
			url:        "/api/scoring/games/nope",
			wantStatus: http.StatusNotFound,
			wantTrace:  []string{"DeleteGame"},
		},
		{
			name: "unexpected service failure",
			setup: func(f *FakeScoringService) {
				f.GetScoreboardFunc = func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
					return nil, errors.New("database unavailable")
				}
			},
			method:     http.MethodGet,
			url:        "/api/scoring/games/game-1/scoreboard",
			wantStatus: http.StatusInternalServerError,
			wantTrace:  []string{"GetScoreboard"},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.NotContains(t, rr.Body.String(), "database unavailable")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeScoringService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			router := newTestRouter(svc, nil, nil)

			req := httptest.NewRequest(tt.method, tt.url, bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantTrace, svc.Trace())
			if tt.verify != nil {
				tt.verify(t, rr)
			}
		})
	}
}

func TestHTTPImport(t *testing.T) {
	csv := "Player,1,2\nPar,4,3\nAlice,4,3\n"

	t.Run("multipart upload", func(t *testing.T) {
		svc := NewFakeScoringService()
		var got scoringservice.ImportRequest
		svc.ImportScorecardFunc = func(ctx context.Context, req scoringservice.ImportRequest) (*scoringservice.ScoreboardResult, error) {
			got = req
			return &scoringservice.ScoreboardResult{GameID: "generated"}, nil
		}

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "club-night.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csv))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/scoring/imports?name=Club+Night", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()
		newTestRouter(svc, nil, nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "club-night.csv", got.Filename)
		assert.Equal(t, "Club Night", got.Name)
		assert.Equal(t, csv, string(got.Data))
	})

	t.Run("raw body with filename", func(t *testing.T) {
		svc := NewFakeScoringService()
		var got scoringservice.ImportRequest
		svc.ImportScorecardFunc = func(ctx context.Context, req scoringservice.ImportRequest) (*scoringservice.ScoreboardResult, error) {
			got = req
			return &scoringservice.ScoreboardResult{GameID: req.GameID}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/scoring/imports?filename=card.csv&gameId=game-7", bytes.NewBufferString(csv))
		req.Header.Set("Content-Type", "text/csv")
		rr := httptest.NewRecorder()
		newTestRouter(svc, nil, nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "card.csv", got.Filename)
		assert.Equal(t, "game-7", got.GameID)
	})

	t.Run("raw body without filename", func(t *testing.T) {
		svc := NewFakeScoringService()
		req := httptest.NewRequest(http.MethodPost, "/api/scoring/imports", bytes.NewBufferString(csv))
		rr := httptest.NewRecorder()
		newTestRouter(svc, nil, nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, svc.Trace())
	})

	t.Run("rejected file", func(t *testing.T) {
		svc := NewFakeScoringService()
		svc.ImportScorecardFunc = func(ctx context.Context, req scoringservice.ImportRequest) (*scoringservice.ScoreboardResult, error) {
			return nil, &scoringservice.ImportError{Filename: req.Filename, Code: scoringservice.ImportCodeUnsupported, Err: errors.New("unsupported file type")}
		}
		req := httptest.NewRequest(http.MethodPost, "/api/scoring/imports?filename=card.pdf", bytes.NewBufferString("%PDF"))
		rr := httptest.NewRecorder()
		newTestRouter(svc, nil, nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var got errorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, scoringservice.ImportCodeUnsupported, got.Code)
	})
}

func TestHTTPRescoreGame(t *testing.T) {
	tests := []struct {
		name       string
		scheduler  *FakeScheduler
		body       string
		wantStatus int
		wantAt     time.Time
	}{
		{
			name:       "immediately",
			scheduler:  &FakeScheduler{},
			wantStatus: http.StatusAccepted,
			wantAt:     time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name:       "at a timestamp",
			scheduler:  &FakeScheduler{},
			body:       `{"at": "2026-10-03T12:00:00Z"}`,
			wantStatus: http.StatusAccepted,
			wantAt:     time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC),
		},
		{
			name:       "unreadable time",
			scheduler:  &FakeScheduler{},
			body:       `{"at": "whenever suits"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no queue configured",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scheduler Scheduler
			if tt.scheduler != nil {
				scheduler = tt.scheduler
			}
			router := newTestRouter(NewFakeScoringService(), scheduler, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/scoring/games/game-1/rescore", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusAccepted {
				return
			}
			var got rescoreResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, "game-1", got.GameID)
			assert.True(t, tt.wantAt.Equal(got.ScheduledAt), "scheduled at %v", got.ScheduledAt)
			assert.Equal(t, []string{"game-1"}, tt.scheduler.gameIDs)
		})
	}
}
