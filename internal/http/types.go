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

type Server struct {
	Store          league.Store
	Engine         rating.Engine
	Tournaments    tournament.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
