package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
	"github.com/beniksen/topspin/internal/notifier"
	"github.com/beniksen/topspin/internal/tournament"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *league.Match, names map[string]string, dryRun bool) error {
	msg := s.formatResultNotification(match, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(mode league.Mode, players []*league.Player, dryRun bool) error {
	msg := s.formatLeaderboard(mode, players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendTournamentCreated(t *tournament.Tournament, groupCount, matchCount int, dryRun bool) error {
	msg := s.formatTournamentCreated(t, groupCount, matchCount)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(detail *tournament.Detail, names map[string]string, dryRun bool) error {
	msg := s.formatStandings(detail, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func teamLabel(ids []string, names map[string]string) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			labels[i] = name
		} else {
			labels[i] = id
		}
	}
	return strings.Join(labels, " & ")
}

// formatResultNotification creates the Slack message for a rated match using Block Kit.
func (s *Notifier) formatResultNotification(match *league.Match, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏓 Match result! 🏓", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winner, loser := match.Team1, match.Team2
	winnerScore, loserScore := match.Team1Score, match.Team2Score
	if !match.Team1Won() {
		winner, loser = loser, winner
		winnerScore, loserScore = loserScore, winnerScore
	}
	resultText := fmt.Sprintf("%s beat %s %d-%d",
		teamLabel(winner, names), teamLabel(loser, names), winnerScore, loserScore)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	contextText := fmt.Sprintf("%s • played %s", match.Type, match.PlayedAt.Format("Monday 02 Jan, 15:04"))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the rating leaderboard.
func (s *Notifier) formatLeaderboard(mode league.Mode, players []*league.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s Leaderboard 🏆", mode), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, player := range players {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		stats := player.Stats(mode)
		playerText := fmt.Sprintf("%d. %s %s\n> *Rating*: %.0f (±%.0f) | *W/L*: %d/%d",
			rank,
			medal,
			player.Name,
			stats.Rating,
			stats.Rd,
			stats.Wins,
			stats.Losses,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatTournamentCreated creates the Slack message announcing a new tournament.
func (s *Notifier) formatTournamentCreated(t *tournament.Tournament, groupCount, matchCount int) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏓 New tournament: %s 🏓", t.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Mode: %s (%s)\nGroups: %d\nScheduled matches: %d\nWindow: %s - %s",
		t.Mode,
		t.Format,
		groupCount,
		matchCount,
		t.StartAt.Format("02 Jan"),
		t.EndAt.Format("02 Jan"),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates a Slack message with the standings of every group.
func (s *Notifier) formatStandings(detail *tournament.Detail, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 Standings: %s 🏆", detail.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	for _, group := range detail.Groups {
		var lines []string
		for _, placement := range group.Placements {
			lines = append(lines, fmt.Sprintf("%d. %s: %d-%d (%+d)",
				placement.Rank,
				teamLabel(placement.TeamIDs, names),
				placement.Wins,
				placement.Losses,
				placement.PointDifferential,
			))
		}
		if len(lines) == 0 {
			lines = append(lines, "No matchups scheduled.")
		}
		groupText := fmt.Sprintf("*%s*\n%s", group.Name, strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", groupText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
