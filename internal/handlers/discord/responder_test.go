package discord

import (
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInteractions records every answer given to an interaction, in order
type fakeInteractions struct {
	mu        sync.Mutex
	calls     []string
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followUps []*discordgo.WebhookParams
}

func (f *fakeInteractions) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "respond")
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractions) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "edit")
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeInteractions) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, params *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "followup")
	f.followUps = append(f.followUps, params)
	return &discordgo.Message{}, nil
}

func commandInteraction(userID, subcommand string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: CommandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    subcommand,
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: options,
			}},
		},
	}}
}

func buttonInteraction(userID string, id CustomID) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}},
		Data:   discordgo.MessageComponentInteractionData{CustomID: id.String()},
	}}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func TestResponder_RespondsDirectly(t *testing.T) {
	session := &fakeInteractions{}
	r := newResponder(session, buttonInteraction("player", CustomID{Action: ActionKeep, Target: "m1"}))

	require.NoError(t, r.Respond(&reply{content: "Kept.", update: true}))

	assert.Equal(t, []string{"respond"}, session.calls)
	resp := session.responses[0]
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "Kept.", resp.Data.Content)
	assert.NotNil(t, resp.Data.Components)
	assert.Empty(t, resp.Data.Components)
}

func TestResponder_DeferredEdit(t *testing.T) {
	session := &fakeInteractions{}
	r := newResponder(session, commandInteraction("player", SubcommandStatus))

	require.NoError(t, r.Defer(ack{ephemeral: true}))
	require.Error(t, r.Defer(ack{ephemeral: true}))
	require.NoError(t, r.Respond(&reply{content: "Gandalf is not concentrating.", ephemeral: true}))

	assert.Equal(t, []string{"respond", "edit"}, session.calls)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, session.responses[0].Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, session.responses[0].Data.Flags)
	require.NotNil(t, session.edits[0].Content)
	assert.Equal(t, "Gandalf is not concentrating.", *session.edits[0].Content)
}

func TestResponder_DeferredUpdateFollowsUpOnNewMessage(t *testing.T) {
	session := &fakeInteractions{}
	r := newResponder(session, buttonInteraction("player", CustomID{Action: ActionDeleteConfirm, Target: "m1"}))

	require.NoError(t, r.Defer(ack{ephemeral: true, update: true}))
	require.NoError(t, r.Respond(&reply{content: "❌ That concentration has already ended.", ephemeral: true}))

	assert.Equal(t, []string{"respond", "followup"}, session.calls)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, session.responses[0].Type)
	assert.Equal(t, "❌ That concentration has already ended.", session.followUps[0].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, session.followUps[0].Flags)
}

func TestComponentAck(t *testing.T) {
	assert.Equal(t, ack{ephemeral: true}, componentAck(CustomID{Action: ActionSave, Target: "m1"}))
	assert.Equal(t, ack{ephemeral: true}, componentAck(CustomID{Action: ActionDelete, Target: "m1"}))
	assert.Equal(t, ack{ephemeral: true, update: true}, componentAck(CustomID{Action: ActionDeleteConfirm, Target: "m1"}))
	assert.Equal(t, ack{ephemeral: true, update: true}, componentAck(CustomID{Action: ActionKeep, Target: "m1"}))
	assert.Equal(t, ack{ephemeral: true, update: true}, componentAck(CustomID{Action: ActionEndConfirm, Target: "a1"}))
}

func (s *HandlerTestSuite) TestDispatch_FastCommandAnswersDirectly() {
	session := &fakeInteractions{}

	s.handler.dispatch(session, commandInteraction("player", SubcommandStatus, stringOption("character", "Gandalf")))

	s.Equal([]string{"respond"}, session.calls)
	s.Equal(discordgo.InteractionResponseChannelMessageWithSource, session.responses[0].Type)
	s.Equal("Gandalf is not concentrating.", session.responses[0].Data.Content)
}

func (s *HandlerTestSuite) TestDispatch_SlowCommandIsDeferred() {
	s.handler.deferAfter = 10 * time.Millisecond
	s.dndClient.EXPECT().GetSpell("hold-person").DoAndReturn(func(string) (*entities.Item, error) {
		time.Sleep(100 * time.Millisecond)
		return &entities.Item{
			ID:            "hold-person",
			Name:          "Hold Person",
			Type:          "spell",
			Level:         2,
			Concentration: true,
			Duration:      entities.ItemDuration{Value: 1, Units: entities.UnitMinute},
			Source:        dnd5e.SourcePrefix + "hold-person",
		}, nil
	})
	session := &fakeInteractions{}

	s.handler.dispatch(session, commandInteraction("gm", SubcommandCast,
		stringOption("character", "Gandalf"), stringOption("spell", "Hold Person")))

	s.Equal([]string{"respond", "edit"}, session.calls)
	s.Equal(discordgo.InteractionResponseDeferredChannelMessageWithSource, session.responses[0].Type)
	s.Equal(discordgo.MessageFlagsEphemeral, session.responses[0].Data.Flags)
	s.Require().NotNil(session.edits[0].Content)
	s.Equal("Gandalf casts Hold Person at level 2.\nGandalf is concentrating on Hold Person.", *session.edits[0].Content)
}

func TestCommandAck(t *testing.T) {
	assert.Equal(t, ack{}, commandAck(SubcommandDamage))
	assert.Equal(t, ack{ephemeral: true}, commandAck(SubcommandCast))
	assert.Equal(t, ack{ephemeral: true}, commandAck(SubcommandEnd))
}
