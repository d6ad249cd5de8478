package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRateMatch       EventType = "rate-match"
	EventRecomputeAll    EventType = "recompute-all"
	EventNotifyResult    EventType = "notify-result"
	EventNotifyStandings EventType = "notify-standings"
)

// RateMatchPayload asks the rating worker to rate one confirmed match.
type RateMatchPayload struct {
	MatchID string `msgpack:"match_id"`
}

// RecomputePayload asks for a full rating replay. Reason is only logged.
type RecomputePayload struct {
	Reason string `msgpack:"reason"`
}

// NotifyResultPayload carries a rated match id to the notification worker.
type NotifyResultPayload struct {
	MatchID string `msgpack:"match_id"`
}

// NotifyStandingsPayload asks for a standings post for one tournament.
type NotifyStandingsPayload struct {
	TournamentID string `msgpack:"tournament_id"`
}
