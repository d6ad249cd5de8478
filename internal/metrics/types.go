package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds the Prometheus collectors for the application.
type Service struct {
	MatchesRated       prometheus.Counter
	RecomputeRuns      prometheus.Counter
	RatingDuration     prometheus.Histogram
	TournamentsCreated prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
