package discord

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelID string
	send      *discordgo.MessageSend
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failDM map[string]bool
}

func (f *fakeSender) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.failDM[recipientID] {
		return nil, errors.New("cannot send messages to this user")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, send: data})
	return &discordgo.Message{ID: "sent", ChannelID: channelID}, nil
}

func (f *fakeSender) to(channelID string) []*discordgo.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.MessageSend
	for _, m := range f.sent {
		if m.channelID == channelID {
			out = append(out, m.send)
		}
	}
	return out
}

// descriptions lists the embed text of everything sent anywhere
func (f *fakeSender) descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		for _, embed := range m.send.Embeds {
			out = append(out, embed.Description)
		}
	}
	return out
}

// customIDs lists the button ids of a sent message
func customIDs(send *discordgo.MessageSend) []string {
	var out []string
	for _, component := range send.Components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range row.Components {
			if button, ok := c.(discordgo.Button); ok {
				out = append(out, button.CustomID)
			}
		}
	}
	return out
}

func newTestPublisher(t *testing.T, sender *fakeSender, channelID string) *Publisher {
	localizer, err := i18n.NewDefaultLocalizer("en-US")
	require.NoError(t, err)
	return NewPublisher(&PublisherConfig{Session: sender, ChannelID: channelID, Localizer: localizer})
}

func TestPublisher_Channel(t *testing.T) {
	sender := &fakeSender{}
	publisher := newTestPublisher(t, sender, "table")

	err := publisher.Publish(context.Background(), &entities.Message{
		ID:      "m1",
		Kind:    entities.MessageKindGain,
		Speaker: entities.Speaker{Alias: "Gandalf"},
		Card: &entities.Card{
			Title:   "Concentration Notifier",
			Content: "Gandalf is concentrating on Bless.",
			Details: "Up to three creatures are blessed.",
		},
	})
	require.NoError(t, err)

	sent := sender.to("table")
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Embeds, 1)
	embed := sent[0].Embeds[0]
	assert.Equal(t, "Gandalf is concentrating on Bless.", embed.Description)
	assert.Equal(t, "Gandalf", embed.Author.Name)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Details", embed.Fields[0].Name)
	assert.Empty(t, sent[0].Components)
}

func TestPublisher_Whisper(t *testing.T) {
	sender := &fakeSender{failDM: map[string]bool{"closed": true}}
	publisher := newTestPublisher(t, sender, "table")

	err := publisher.Publish(context.Background(), &entities.Message{
		ID:      "m2",
		Kind:    entities.MessageKindSaveRequest,
		Whisper: []string{"player", "closed", "gm"},
		Card: &entities.Card{
			Content: "DC 10 Constitution Saving Throw",
			Buttons: []entities.CardButton{
				{Action: entities.ButtonSave, Label: "DC 10 Constitution Saving Throw"},
				{Action: entities.ButtonDelete, Label: "Remove Concentration"},
			},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	assert.Empty(t, sender.to("table"))
	assert.Empty(t, sender.to("dm-closed"))
	require.Len(t, sender.to("dm-gm"), 1)
	sent := sender.to("dm-player")
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"conc:save:m2", "conc:delete:m2"}, customIDs(sent[0]))
}

func TestPublisher_NoChannel(t *testing.T) {
	sender := &fakeSender{}
	publisher := newTestPublisher(t, sender, "")

	err := publisher.Publish(context.Background(), &entities.Message{ID: "m3", Kind: entities.MessageKindChat})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}
