package http

import (
	"net/http"

	"github.com/beniksen/topspin/internal/config"
	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
	"github.com/beniksen/topspin/internal/notifier"
	"github.com/beniksen/topspin/internal/pubsub"
	"github.com/beniksen/topspin/internal/rating"
	"github.com/beniksen/topspin/internal/tournament"
)

func NewServer(store league.Store, engine rating.Engine, tournaments tournament.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Engine:         engine,
		Tournaments:    tournaments,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), requestOptionsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), requestOptionsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), requestOptionsMiddleware))
	s.Router.Handle("/players/upsert", Chain(s.UpsertPlayerHandler(), requestOptionsMiddleware))
	s.Router.Handle("/players/active", Chain(s.SetPlayerActiveHandler(), requestOptionsMiddleware))
	s.Router.Handle("/players/history", Chain(s.RatingHistoryHandler(), requestOptionsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), requestOptionsMiddleware))
	s.Router.Handle("/matches/submit", Chain(s.SubmitMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/matches/confirm", Chain(s.ConfirmMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/matches/edit", Chain(s.EditMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/matches/cancel", Chain(s.CancelMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), requestOptionsMiddleware))
	s.Router.Handle("/recompute", Chain(s.RecomputeHandler(), requestOptionsMiddleware))
	s.Router.Handle("/rate-match", Chain(s.RateMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/notify-result", Chain(s.NotifyResultHandler(), requestOptionsMiddleware))
	s.Router.Handle("/notify-standings", Chain(s.NotifyStandingsHandler(), requestOptionsMiddleware))
	s.Router.Handle("/tournaments", Chain(s.ListTournamentsHandler(), requestOptionsMiddleware))
	s.Router.Handle("/tournaments/create", Chain(s.CreateTournamentHandler(), requestOptionsMiddleware))
	s.Router.Handle("/tournaments/get", Chain(s.GetTournamentHandler(), requestOptionsMiddleware))
	s.Router.Handle("/tournaments/report", Chain(s.ReportTournamentMatchHandler(), requestOptionsMiddleware))
	s.Router.Handle("/tournaments/cancel", Chain(s.CancelTournamentHandler(), requestOptionsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
