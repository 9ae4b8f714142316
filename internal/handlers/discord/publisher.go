package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/bwmarrin/discordgo"
)

// messageSender is the part of the Discord session the publisher needs
type messageSender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Publisher posts created messages to Discord. Whispers go to each
// recipient's DMs, everything else to the announcement channel.
type Publisher struct {
	sender    messageSender
	channelID string
	localizer i18n.Localizer
}

// PublisherConfig holds configuration for the publisher
type PublisherConfig struct {
	Session   messageSender
	ChannelID string
	Localizer i18n.Localizer
}

// NewPublisher creates a Discord publisher
func NewPublisher(cfg *PublisherConfig) *Publisher {
	if cfg.Session == nil {
		panic("session is required")
	}
	if cfg.Localizer == nil {
		panic("localizer is required")
	}

	return &Publisher{
		sender:    cfg.Session,
		channelID: cfg.ChannelID,
		localizer: cfg.Localizer,
	}
}

// Publish sends the message
func (p *Publisher) Publish(_ context.Context, message *entities.Message) error {
	if message == nil {
		return nil
	}

	send := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildCardEmbed(message, p.localizer.Localize("CN.MESSAGE.DETAILS"))},
		Components: buildCardComponents(message),
	}

	if message.IsWhisper() {
		var errs []error
		for _, userID := range message.Whisper {
			if err := p.sendDirect(userID, send); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if p.channelID == "" {
		log.Printf("[PUBLISH] No announcement channel configured, dropping %s message %s", message.Kind, message.ID)
		return nil
	}

	if _, err := p.sender.ChannelMessageSendComplex(p.channelID, send); err != nil {
		return fmt.Errorf("failed to send %s message: %w", message.Kind, err)
	}
	return nil
}

func (p *Publisher) sendDirect(userID string, send *discordgo.MessageSend) error {
	channel, err := p.sender.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}

	if _, err := p.sender.ChannelMessageSendComplex(channel.ID, send); err != nil {
		return fmt.Errorf("failed to whisper %s: %w", userID, err)
	}
	return nil
}
