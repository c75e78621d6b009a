package bot

import (
	"fmt"
	"time"

	"lutfarm/bot/common"
	"lutfarm/events"

	"github.com/bwmarrin/discordgo"
)

// maxErrorLength keeps failure embeds inside Discord's description limit
const maxErrorLength = 1000

// BuildRunCompletedEmbed creates the summary embed of a finished run
func BuildRunCompletedEmbed(e events.RunCompletedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("✅ %s / %s optimized", e.Game, e.BetMode),
		Color:     common.ColorSuccess,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Best Score", Value: fmt.Sprintf("%.4f", e.BestScore), Inline: true},
			{Name: "RTP", Value: common.FormatPercent(e.RTP), Inline: true},
			{Name: "Retained", Value: common.FormatCount(int64(e.Retained)), Inline: true},
			{Name: "Duration", Value: common.FormatDuration(e.Duration), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Run " + e.RunID},
	}
}

// BuildRunFailedEmbed creates the embed of an aborted run
func BuildRunFailedEmbed(e events.RunFailedEvent) *discordgo.MessageEmbed {
	msg := e.Error
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength] + "…"
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("❌ %s / %s failed", e.Game, e.BetMode),
		Color:       common.ColorDanger,
		Description: fmt.Sprintf("```\n%s\n```", msg),
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Run " + e.RunID},
	}
}
