package discord

import (
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/bwmarrin/discordgo"
)

const (
	colorGained  = 0x2ecc71
	colorLost    = 0x95a5a6
	colorRequest = 0xf39c12
	colorFailed  = 0xe74c3c
	colorDefault = 0x3498db

	// Discord rejects field values longer than this
	maxFieldLength = 1024
)

// buildCardEmbed renders a message card. detailsLabel names the field the
// card details go in.
func buildCardEmbed(message *entities.Message, detailsLabel string) *discordgo.MessageEmbed {
	card := message.Card
	if card == nil {
		card = &entities.Card{}
	}

	embed := &discordgo.MessageEmbed{
		Title:       card.Title,
		Description: card.Content,
		Color:       messageColor(message),
		Fields:      []*discordgo.MessageEmbedField{},
	}

	if message.Speaker.Alias != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: message.Speaker.Alias}
	}

	// Foundry style icon paths are not reachable from Discord
	if strings.HasPrefix(card.Icon, "http://") || strings.HasPrefix(card.Icon, "https://") {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: card.Icon}
	}

	for _, field := range card.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  truncate(field.Value, maxFieldLength),
			Inline: field.Inline,
		})
	}

	if card.Details != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  detailsLabel,
			Value: truncate(card.Details, maxFieldLength),
		})
	}

	return embed
}

func messageColor(message *entities.Message) int {
	switch message.Kind {
	case entities.MessageKindGain:
		return colorGained
	case entities.MessageKindLoss:
		return colorLost
	case entities.MessageKindSaveRequest:
		return colorRequest
	case entities.MessageKindSaveResult:
		if message.Roll != nil && message.Flags.SaveDC > 0 && message.Roll.Total < message.Flags.SaveDC {
			return colorFailed
		}
		return colorGained
	default:
		return colorDefault
	}
}

// buildCardComponents turns card buttons into one action row
func buildCardComponents(message *entities.Message) []discordgo.MessageComponent {
	if message.Card == nil || len(message.Card.Buttons) == 0 {
		return nil
	}

	buttons := make([]discordgo.MessageComponent, 0, len(message.Card.Buttons))
	for _, button := range message.Card.Buttons {
		switch button.Action {
		case entities.ButtonSave:
			buttons = append(buttons, discordgo.Button{
				Label:    button.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: CustomID{Action: ActionSave, Target: message.ID}.String(),
				Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
			})
		case entities.ButtonDelete:
			buttons = append(buttons, discordgo.Button{
				Label:    button.Label,
				Style:    discordgo.DangerButton,
				CustomID: CustomID{Action: ActionDelete, Target: message.ID}.String(),
				Emoji:    &discordgo.ComponentEmoji{Name: "🗑️"},
			})
		}
	}

	if len(buttons) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// buildConfirmComponents builds the remove and keep buttons shown under a prompt
func buildConfirmComponents(confirm CustomID, confirmLabel, cancelLabel string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    confirmLabel,
					Style:    discordgo.DangerButton,
					CustomID: confirm.String(),
				},
				discordgo.Button{
					Label:    cancelLabel,
					Style:    discordgo.SecondaryButton,
					CustomID: CustomID{Action: ActionKeep, Target: confirm.Target}.String(),
				},
			},
		},
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
