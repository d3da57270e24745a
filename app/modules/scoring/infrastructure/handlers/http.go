package scoringhandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/go-chi/chi/v5"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/parsers"
	scoringqueue "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/queue"
)

const (
	// maxUploadBytes caps snapshot bodies and scorecard uploads.
	maxUploadBytes = 10 << 20
	gameIDParam    = "gameID"
)

type stageResponse struct {
	Stage      string                   `json:"stage"`
	Scoreboard scoringdomain.Scoreboard `json:"scoreboard"`
}

type rescoreRequest struct {
	At string `json:"at"`
}

type rescoreResponse struct {
	GameID      string    `json:"gameId"`
	JobID       int64     `json:"jobId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HandleHTTPScore scores the snapshot in the request body. With ?save=true
// the game and its scoreboard are stored.
func (h *ScoringHandlers) HandleHTTPScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPScore")
	defer span.End()

	snap, ok := h.decodeSnapshot(w, r)
	if !ok {
		return
	}

	var (
		result *scoringservice.ScoreboardResult
		err    error
	)
	status := http.StatusOK
	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		if claims, ok := ClaimsFromContext(ctx); ok && !claims.CanWrite {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "token is read only"})
			return
		}
		result, err = h.service.SaveGame(ctx, snap)
		status = http.StatusCreated
	} else {
		result, err = h.service.ScoreSnapshot(ctx, snap)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, result)
}

// HandleHTTPTrace returns the scoreboard after every pipeline stage.
func (h *ScoringHandlers) HandleHTTPTrace(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPTrace")
	defer span.End()

	snap, ok := h.decodeSnapshot(w, r)
	if !ok {
		return
	}

	stages, err := h.service.TraceSnapshot(ctx, snap)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]stageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, stageResponse{Stage: s.Stage, Scoreboard: s.Scoreboard})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleHTTPImport stores an uploaded scorecard. The file is read from the
// "file" field of a multipart form, or from the raw body named by ?filename.
func (h *ScoringHandlers) HandleHTTPImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPImport")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	query := r.URL.Query()
	req := scoringservice.ImportRequest{
		Filename: query.Get("filename"),
		GameID:   query.Get("gameId"),
		Name:     query.Get("name"),
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
			return
		}
		defer file.Close()
		if req.Filename == "" {
			req.Filename = header.Filename
		}
		if req.Data, err = io.ReadAll(file); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read upload"})
			return
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		req.Data = data
	}

	if req.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing filename"})
		return
	}

	result, err := h.service.ImportScorecard(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleHTTPListGames lists stored games, most recently updated first.
func (h *ScoringHandlers) HandleHTTPListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPListGames")
	defer span.End()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	games, err := h.service.ListGames(ctx, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleHTTPGetScoreboard returns the stored scoreboard of a game.
func (h *ScoringHandlers) HandleHTTPGetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPGetScoreboard")
	defer span.End()

	result, err := h.service.GetScoreboard(ctx, chi.URLParam(r, gameIDParam))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleHTTPRescoreGame queues a rescore. The optional "at" field takes an
// RFC 3339 time or natural language such as "in 2 hours".
func (h *ScoringHandlers) HandleHTTPRescoreGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPRescoreGame")
	defer span.End()

	if h.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "rescore queue unavailable"})
		return
	}

	var body rescoreRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	at, err := scoringqueue.ParseScheduleTime(body.At, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	gameID := chi.URLParam(r, gameIDParam)
	jobID, err := h.scheduler.EnqueueRescore(ctx, gameID, at)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rescoreResponse{GameID: gameID, JobID: jobID, ScheduledAt: at})
}

// HandleHTTPRunningTotalsChart renders the running points of every player as PNG.
func (h *ScoringHandlers) HandleHTTPRunningTotalsChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPRunningTotalsChart")
	defer span.End()

	png, err := h.service.RenderRunningTotals(ctx, chi.URLParam(r, gameIDParam))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleHTTPDeleteGame removes a game and its scoreboard.
func (h *ScoringHandlers) HandleHTTPDeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoringHandlers.HandleHTTPDeleteGame")
	defer span.End()

	if err := h.service.DeleteGame(ctx, chi.URLParam(r, gameIDParam)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeSnapshot reads a JSON snapshot and checks it against the snapshot schema.
func (h *ScoringHandlers) decodeSnapshot(w http.ResponseWriter, r *http.Request) (*scoringdomain.GameSnapshot, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
		return nil, false
	}
	snap, err := parsers.NewJSONParser().Parse(data)
	if err != nil {
		h.logger.InfoContext(r.Context(), "Rejected snapshot", attr.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return snap, true
}

func (h *ScoringHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var importErr *scoringservice.ImportError
	switch {
	case errors.Is(err, scoringservice.ErrGameNotFound), errors.Is(err, scoringservice.ErrScoreboardNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, scoringservice.ErrEmptySnapshot):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &importErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: importErr.Error(), Code: importErr.Code})
	default:
		h.logger.ErrorContext(r.Context(), "Scoring request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
