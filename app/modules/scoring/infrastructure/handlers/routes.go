package scoringhandlers

import (
	"github.com/go-chi/chi/v5"
	scoringauth "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/auth"
)

// Routes mounts the scoring API on r.
func Routes(r chi.Router, h Handlers, provider scoringauth.Provider, limiter *IPRateLimiter) {
	r.Route("/api/scoring", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}
		r.Use(BearerAuthMiddleware(provider))

		r.Post("/scoreboards", h.HandleHTTPScore)
		r.Post("/traces", h.HandleHTTPTrace)
		r.Get("/games", h.HandleHTTPListGames)
		r.Get("/games/{gameID}/scoreboard", h.HandleHTTPGetScoreboard)
		r.Get("/games/{gameID}/chart.png", h.HandleHTTPRunningTotalsChart)

		r.Group(func(r chi.Router) {
			r.Use(RequireWriteMiddleware)
			r.Post("/imports", h.HandleHTTPImport)
			r.Post("/games/{gameID}/rescore", h.HandleHTTPRescoreGame)
			r.Delete("/games/{gameID}", h.HandleHTTPDeleteGame)
		})
	})
}
