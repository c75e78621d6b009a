package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lutfarm/bot/common"
	"lutfarm/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func TestBuildRunCompletedEmbed(t *testing.T) {
	embed := BuildRunCompletedEmbed(events.RunCompletedEvent{
		RunID:     "abc",
		Game:      "0_0_lines",
		BetMode:   "base",
		BestScore: 0.81234,
		RTP:       0.97,
		Retained:  12345,
		Duration:  95*time.Second + 400*time.Millisecond,
	})

	assert.Equal(t, "✅ 0_0_lines / base optimized", embed.Title)
	assert.Equal(t, common.ColorSuccess, embed.Color)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "0.8123", embed.Fields[0].Value)
	assert.Equal(t, "97.00%", embed.Fields[1].Value)
	assert.Equal(t, "12,345", embed.Fields[2].Value)
	assert.Equal(t, "1m35s", embed.Fields[3].Value)
	assert.Equal(t, "Run abc", embed.Footer.Text)
}

func TestBuildRunFailedEmbed(t *testing.T) {
	embed := BuildRunFailedEmbed(events.RunFailedEvent{RunID: "r", Game: "g", BetMode: "bonus", Error: strings.Repeat("x", 1500)})

	assert.Equal(t, common.ColorDanger, embed.Color)
	assert.Contains(t, embed.Title, "g / bonus failed")
	assert.Less(t, len(embed.Description), 1100)
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("sends to the configured channel", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("ChannelMessageSendEmbed", "chan-1", mock.MatchedBy(func(e *discordgo.MessageEmbed) bool {
			return strings.Contains(e.Title, "optimized")
		})).Return(&discordgo.Message{ID: "m1"}, nil)

		n := &Notifier{session: sender, channelID: "chan-1"}
		require.NoError(t, n.NotifyRunCompleted(ctx, events.RunCompletedEvent{Game: "g", BetMode: "base"}))
		sender.AssertExpectations(t)
	})

	t.Run("wraps send errors", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("ChannelMessageSendEmbed", "chan-1", mock.Anything).Return(nil, errors.New("rate limited"))

		n := &Notifier{session: sender, channelID: "chan-1"}
		err := n.NotifyRunFailed(ctx, events.RunFailedEvent{Error: "boom"})
		assert.ErrorContains(t, err, "rate limited")
		sender.AssertExpectations(t)
	})
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "999", common.FormatCount(999))
	assert.Equal(t, "1,000", common.FormatCount(1000))
	assert.Equal(t, "-1,234,567", common.FormatCount(-1234567))
	assert.Equal(t, "12.50%", common.FormatPercent(0.125))
	assert.Equal(t, "250ms", common.FormatDuration(250*time.Millisecond))
	assert.Equal(t, "<t:0:R>", common.FormatDiscordTimestamp(time.Unix(0, 0), "R"))
}
