package scoringhandlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/handlerwrapper"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
)

// Handlers defines the interface for scoring event and HTTP handlers.
type Handlers interface {
	// HandleGameUpdated stores and scores a changed game.
	HandleGameUpdated(ctx context.Context, payload *scoringevents.GameUpdatedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRescoreRequested queues a rescore of a stored game.
	HandleRescoreRequested(ctx context.Context, payload *scoringevents.RescoreRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPScore(w http.ResponseWriter, r *http.Request)
	HandleHTTPTrace(w http.ResponseWriter, r *http.Request)
	HandleHTTPImport(w http.ResponseWriter, r *http.Request)
	HandleHTTPListGames(w http.ResponseWriter, r *http.Request)
	HandleHTTPGetScoreboard(w http.ResponseWriter, r *http.Request)
	HandleHTTPRescoreGame(w http.ResponseWriter, r *http.Request)
	HandleHTTPRunningTotalsChart(w http.ResponseWriter, r *http.Request)
	HandleHTTPDeleteGame(w http.ResponseWriter, r *http.Request)
}

// Scheduler queues rescores. A nil Scheduler disables rescheduling.
type Scheduler interface {
	EnqueueRescore(ctx context.Context, gameID string, at time.Time) (int64, error)
}
