package bot

import (
	"context"
	"fmt"

	"lutfarm/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// embedSender is the part of a Discord session the notifier uses
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts run summaries to a Discord channel
type Notifier struct {
	session   embedSender
	channelID string
}

// New creates a notifier authenticated with a bot token
func New(token, channelID string) (*Notifier, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	return &Notifier{session: dg, channelID: channelID}, nil
}

// NotifyRunCompleted posts the summary of a finished run
func (n *Notifier) NotifyRunCompleted(ctx context.Context, e events.RunCompletedEvent) error {
	return n.send(BuildRunCompletedEmbed(e))
}

// NotifyRunFailed posts the error of an aborted run
func (n *Notifier) NotifyRunFailed(ctx context.Context, e events.RunFailedEvent) error {
	return n.send(BuildRunFailedEmbed(e))
}

func (n *Notifier) send(embed *discordgo.MessageEmbed) error {
	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	log.WithFields(log.Fields{
		"channel": n.channelID,
		"title":   embed.Title,
	}).Debug("Discord notification sent")
	return nil
}
