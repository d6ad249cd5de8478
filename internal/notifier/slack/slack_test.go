package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
	"github.com/beniksen/topspin/internal/tournament"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendResultNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	match := &league.Match{
		Type:       league.MatchTypeSingles,
		Team1:      []string{"p1"},
		Team2:      []string{"p2"},
		Team1Score: 11,
		Team2Score: 7,
		PlayedAt:   time.Now(),
	}
	names := map[string]string{"p1": "Anna", "p2": "Bo"}

	err := notifier.SendResultNotification(match, names, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendResultNotification")
}

func TestFormatResultNotification_WinnerListedFirst(t *testing.T) {
	match := &league.Match{
		Type:       league.MatchTypeDoubles,
		Team1:      []string{"p1", "p2"},
		Team2:      []string{"p3", "p4"},
		Team1Score: 9,
		Team2Score: 11,
		PlayedAt:   time.Date(2026, 4, 3, 19, 0, 0, 0, time.UTC),
	}
	names := map[string]string{"p1": "Anna", "p2": "Bo", "p3": "Cleo", "p4": "Dee"}

	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(match, names)
	require.Len(t, msg.Blocks.BlockSet, 3)

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Cleo & Dee beat Anna & Bo 11-9", section.Text.Text)
}

func TestFormatLeaderboard_RanksAndEmptyState(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	empty := client.formatLeaderboard(league.ModeOverall, nil)
	require.Len(t, empty.Blocks.BlockSet, 2)

	players := []*league.Player{
		{ID: "p1", Name: "Anna", Overall: league.ModeStats{Wins: 3}},
		{ID: "p2", Name: "Bo", Overall: league.ModeStats{Wins: 1}},
	}
	players[0].Overall.Rating = 1620
	players[0].Overall.Rd = 120
	players[1].Overall.Rating = 1480
	players[1].Overall.Rd = 180

	msg := client.formatLeaderboard(league.ModeOverall, players)
	// Header plus one section per player.
	require.Len(t, msg.Blocks.BlockSet, 3)

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "1. 🥇 Anna")
	assert.Contains(t, first.Text.Text, "1620")
}

func TestFormatStandings_OneSectionPerGroup(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	detail := &tournament.Detail{
		Tournament: tournament.Tournament{Name: "Spring Open"},
		Groups: []tournament.GroupDetail{
			{
				Group: tournament.Group{Name: "A"},
				Placements: []tournament.Placement{
					{TeamIDs: []string{"p1"}, Wins: 2, Rank: 1},
					{TeamIDs: []string{"p2"}, Losses: 2, Rank: 2},
				},
			},
			{Group: tournament.Group{Name: "B"}},
		},
	}
	names := map[string]string{"p1": "Anna", "p2": "Bo"}

	msg := client.formatStandings(detail, names)
	require.Len(t, msg.Blocks.BlockSet, 3)

	groupA, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, groupA.Text.Text, "1. Anna")

	groupB, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, groupB.Text.Text, "No matchups scheduled.")
}
