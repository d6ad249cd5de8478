package notifier

import (
	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/tournament"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For rated match results. names maps player ids to display names.
	SendResultNotification(match *league.Match, names map[string]string, dryRun bool) error
	// For the current leaderboard in one rating mode.
	SendLeaderboard(mode league.Mode, players []*league.Player, dryRun bool) error
	// For freshly scheduled tournaments.
	SendTournamentCreated(t *tournament.Tournament, groupCount, matchCount int, dryRun bool) error
	// For group standings of a running or finished tournament.
	SendStandings(detail *tournament.Detail, names map[string]string, dryRun bool) error
}
