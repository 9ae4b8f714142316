package discord

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e"
	mockdnd5e "github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e/mock"
	"github.com/KirkDiggler/concentration-bot/internal/config"
	mockdice "github.com/KirkDiggler/concentration-bot/internal/dice/mock"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/actors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/users"
	"github.com/KirkDiggler/concentration-bot/internal/services"
	"github.com/KirkDiggler/concentration-bot/internal/testutils"
	"github.com/KirkDiggler/concentration-bot/internal/uuid"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type HandlerTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	dndClient *mockdnd5e.MockClient
	roller    *mockdice.ManualMockRoller
	sender    *fakeSender
	provider  *services.Provider
	handler   *Handler
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.dndClient = mockdnd5e.NewMockClient(s.ctrl)
	s.roller = mockdice.NewManualMockRoller()
	s.sender = &fakeSender{}

	localizer, err := i18n.NewDefaultLocalizer("en-US")
	s.Require().NoError(err)

	actorRepo := actors.NewInMemoryRepository()
	userRepo := users.NewInMemoryRepository()
	s.Require().NoError(userRepo.Upsert(s.ctx, &entities.User{ID: "gm", Name: "Dungeon Master", IsGM: true}))
	s.Require().NoError(userRepo.Upsert(s.ctx, &entities.User{ID: "player", Name: "Frodo"}))

	wizard := testutils.CreateTestCaster("a1", "player", "Gandalf")
	wizard.Items = []*entities.Item{
		testutils.CreateTestSpell("a1", "i1", "Bless", 1),
		{ID: "i2", ActorID: "a1", Name: "Magic Missile", Type: "spell", Level: 1},
	}
	s.Require().NoError(actorRepo.Create(s.ctx, wizard))

	provider, err := services.NewProvider(&services.ProviderConfig{
		World:     config.WorldConfig{Locale: "en-US"},
		Wait:      config.WaitConfig{Interval: 5 * time.Millisecond, Timeout: 200 * time.Millisecond},
		DNDClient: s.dndClient,
		Localizer: localizer,
		Roller:    s.roller,
		UUIDs:     uuid.NewSequenceGenerator("id"),
		Publisher: NewPublisher(&PublisherConfig{
			Session:   s.sender,
			ChannelID: "table",
			Localizer: localizer,
		}),
		ActorRepository: actorRepo,
		UserRepository:  userRepo,
	})
	s.Require().NoError(err)
	s.Require().NoError(provider.DocumentService.Ready(s.ctx))
	s.provider = provider

	s.handler = NewHandler(&HandlerConfig{ServiceProvider: provider})
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func opts(pairs ...any) commandOptions {
	out := commandOptions{}
	for i := 0; i+1 < len(pairs); i += 2 {
		name := pairs[i].(string)
		value := pairs[i+1]
		if n, ok := value.(int); ok {
			value = float64(n)
		}
		out[name] = &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
	}
	return out
}

func (s *HandlerTestSuite) run(userID, subcommand string, o commandOptions) *reply {
	r, err := s.handler.runCommand(s.ctx, userID, subcommand, o)
	s.Require().NoError(err)
	return r
}

func (s *HandlerTestSuite) castBless() {
	s.run("player", SubcommandCast, opts("character", "Gandalf", "spell", "Bless"))
}

// saveRequestID returns the message id behind the save button whispered to the user
func (s *HandlerTestSuite) saveRequestID(userID string) string {
	sent := s.sender.to("dm-" + userID)
	s.Require().NotEmpty(sent)
	ids := customIDs(sent[len(sent)-1])
	s.Require().NotEmpty(ids)
	id, ok := ParseCustomID(ids[0])
	s.Require().True(ok)
	s.Require().Equal(ActionSave, id.Action)
	return id.Target
}

func (s *HandlerTestSuite) TestCommands() {
	cmds := s.handler.commands()
	s.Require().Len(cmds, 1)
	s.Equal(CommandName, cmds[0].Name)

	var names []string
	for _, sub := range cmds[0].Options {
		names = append(names, sub.Name)
	}
	s.Equal([]string{SubcommandRegister, SubcommandCast, SubcommandDamage, SubcommandStatus, SubcommandEnd, SubcommandFlag}, names)

	flag := cmds[0].Options[5].Options[1]
	s.Len(flag.Choices, 6)
}

func (s *HandlerTestSuite) TestRegister() {
	r := s.run("player", SubcommandRegister, opts("name", "Frodo", "hp", 12, "constitution", 16, "proficient", true))
	s.Equal("Frodo joins the table with 12 hit points.", r.content)
	s.True(r.ephemeral)

	actor, err := s.provider.DocumentService.FindActor(s.ctx, "frodo")
	s.Require().NoError(err)
	s.Equal(entities.PermissionOwner, actor.Permissions["player"])
	s.Equal(12, actor.HitPoints.Value)
	s.Equal(5, actor.SaveBonus(entities.AbilityConstitution))
	s.Equal(0, actor.SaveBonus(entities.AbilityWisdom))

	_, err = s.handler.runCommand(s.ctx, "player", SubcommandRegister, opts("name", "Sam"))
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestCast() {
	r := s.run("player", SubcommandCast, opts("character", "gandalf", "spell", "bless", "level", 2))
	s.Equal("Gandalf casts Bless at level 2.\nGandalf is concentrating on Bless.", r.content)

	s.Contains(s.sender.descriptions(), "Gandalf is concentrating on Bless.")
	s.Contains(s.sender.descriptions(), "Gandalf casts Bless at level 2.")

	status := s.run("player", SubcommandStatus, opts("character", "Gandalf"))
	s.Equal("Gandalf is concentrating on Bless, cast at level 2.", status.content)
}

func (s *HandlerTestSuite) TestCast_FetchesSpell() {
	s.dndClient.EXPECT().GetSpell("hold-person").Return(&entities.Item{
		ID:            "hold-person",
		Name:          "Hold Person",
		Type:          "spell",
		Level:         2,
		Concentration: true,
		Duration:      entities.ItemDuration{Value: 1, Units: entities.UnitMinute},
		Source:        dnd5e.SourcePrefix + "hold-person",
	}, nil)

	r := s.run("gm", SubcommandCast, opts("character", "Gandalf", "spell", "Hold Person"))
	s.Equal("Gandalf casts Hold Person at level 2.\nGandalf is concentrating on Hold Person.", r.content)

	actor, err := s.provider.DocumentService.FindActor(s.ctx, "a1")
	s.Require().NoError(err)
	item := actor.GetItem("hold-person")
	s.Require().NotNil(item)
	s.Equal("a1", item.ActorID)

	// The spell is known now, so casting it again needs no lookup
	s.run("gm", SubcommandCast, opts("character", "Gandalf", "spell", "hold person", "level", 3))
}

func (s *HandlerTestSuite) TestCast_Errors() {
	s.dndClient.EXPECT().GetSpell("wish").Return(nil, dnderr.NotFoundf("spell wish not found"))

	tests := []struct {
		name    string
		userID  string
		opts    commandOptions
		check   func(error) bool
		content string
	}{
		{
			name:    "unknown spell",
			userID:  "player",
			opts:    opts("character", "Gandalf", "spell", "Wish"),
			check:   dnderr.IsNotFound,
			content: "❌ Could not find the spell Wish.",
		},
		{
			name:    "below the spell's level",
			userID:  "player",
			opts:    opts("character", "Gandalf", "spell", "Bless", "level", 0),
			check:   dnderr.IsInvalidArgument,
			content: "❌ Bless cannot be cast below level 1.",
		},
		{
			name:    "not the owner",
			userID:  "stranger",
			opts:    opts("character", "Gandalf", "spell", "Bless"),
			check:   func(err error) bool { return dnderr.Is(err, dnderr.CodePermissionDenied) },
			content: "❌ You do not control Gandalf.",
		},
		{
			name:    "unknown character",
			userID:  "player",
			opts:    opts("character", "Saruman", "spell", "Bless"),
			check:   dnderr.IsNotFound,
			content: "❌ No character called Saruman.",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.handler.runCommand(s.ctx, tt.userID, SubcommandCast, tt.opts)
			s.Require().Error(err)
			s.True(tt.check(err))

			r := s.handler.errorReply(err)
			s.Equal(tt.content, r.content)
			s.True(r.ephemeral)
		})
	}
}

func (s *HandlerTestSuite) TestCast_WithoutConcentration() {
	r := s.run("player", SubcommandCast, opts("character", "Gandalf", "spell", "Magic Missile"))
	s.Equal("Gandalf casts Magic Missile at level 1.\nMagic Missile does not require concentration.", r.content)

	status := s.run("player", SubcommandStatus, opts("character", "Gandalf"))
	s.Equal("Gandalf is not concentrating.", status.content)
}

func (s *HandlerTestSuite) TestDamageAndSave() {
	s.castBless()

	r := s.run("gm", SubcommandDamage, opts("character", "Gandalf", "amount", 12))
	s.Equal("Gandalf takes 12 damage and is at 18/30 hit points.", r.content)
	s.False(r.ephemeral)

	requests := s.sender.to("dm-player")
	s.Require().Len(requests, 1)
	s.Equal("Gandalf has taken 12 damage and must make a DC 10 Constitution saving throw to maintain concentration on Bless.",
		requests[0].Embeds[0].Description)

	messageID := s.saveRequestID("player")
	s.roller.SetRolls([]int{15})
	save, err := s.handler.runComponent(s.ctx, "player", CustomID{Action: ActionSave, Target: messageID})
	s.Require().NoError(err)
	s.Equal("You rolled 19.", save.content)
	s.Contains(s.sender.descriptions(), "Gandalf keeps concentrating on Bless (19 vs DC 10).")

	_, err = s.handler.runCommand(s.ctx, "gm", SubcommandDamage, opts("character", "Gandalf", "amount", 0))
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestDeleteButtons() {
	s.castBless()
	s.run("gm", SubcommandDamage, opts("character", "Gandalf", "amount", 30))
	messageID := s.saveRequestID("player")

	prompt, err := s.handler.runComponent(s.ctx, "player", CustomID{Action: ActionDelete, Target: messageID})
	s.Require().NoError(err)
	s.True(prompt.ephemeral)
	s.Require().Len(prompt.embeds, 1)
	s.Equal("Remove concentration on Bless", prompt.embeds[0].Title)
	row := prompt.components[0].(discordgo.ActionsRow)
	s.Equal("conc:delete_confirm:"+messageID, row.Components[0].(discordgo.Button).CustomID)
	s.Equal("conc:keep:"+messageID, row.Components[1].(discordgo.Button).CustomID)

	kept, err := s.handler.runComponent(s.ctx, "player", CustomID{Action: ActionKeep, Target: messageID})
	s.Require().NoError(err)
	s.Equal("Concentration kept.", kept.content)
	s.True(kept.update)

	removed, err := s.handler.runComponent(s.ctx, "player", CustomID{Action: ActionDeleteConfirm, Target: messageID})
	s.Require().NoError(err)
	s.Equal("Concentration on Bless removed.", removed.content)
	s.True(removed.update)
	s.Contains(s.sender.descriptions(), "Gandalf lost concentration on Bless.")

	_, err = s.handler.runComponent(s.ctx, "player", CustomID{Action: ActionDeleteConfirm, Target: messageID})
	s.True(dnderr.IsNotFound(err))
	s.Equal("❌ That concentration has already ended.", s.handler.errorReply(err).content)
}

func (s *HandlerTestSuite) TestEnd() {
	none := s.run("player", SubcommandEnd, opts("character", "Gandalf"))
	s.Equal("Gandalf is not concentrating.", none.content)

	s.castBless()

	prompt := s.run("player", SubcommandEnd, opts("character", "Gandalf"))
	s.Equal("End every concentration of Gandalf?", prompt.content)
	row := prompt.components[0].(discordgo.ActionsRow)
	id, ok := ParseCustomID(row.Components[0].(discordgo.Button).CustomID)
	s.Require().True(ok)
	s.Equal(CustomID{Action: ActionEndConfirm, Target: "a1"}, id)

	_, err := s.handler.runComponent(s.ctx, "stranger", id)
	s.True(dnderr.Is(err, dnderr.CodePermissionDenied))

	ended, err := s.handler.runComponent(s.ctx, "player", id)
	s.Require().NoError(err)
	s.Equal("Gandalf stops concentrating on Bless.", ended.content)
	s.True(ended.update)
}

func (s *HandlerTestSuite) TestEnd_Force() {
	s.castBless()

	r := s.run("player", SubcommandEnd, opts("character", "Gandalf", "force", true))
	s.Equal("Gandalf stops concentrating on Bless.", r.content)

	status := s.run("player", SubcommandStatus, opts("character", "Gandalf"))
	s.Equal("Gandalf is not concentrating.", status.content)
}

func (s *HandlerTestSuite) TestEnd_Spell() {
	s.castBless()

	_, err := s.handler.runCommand(s.ctx, "player", SubcommandEnd, opts("character", "Gandalf", "spell", "Magic Missile"))
	s.Require().Error(err)
	s.Equal("⚠️ The actor is not concentrating on this item.", s.handler.errorReply(err).content)

	r := s.run("player", SubcommandEnd, opts("character", "Gandalf", "spell", "Bless"))
	s.Equal("Gandalf stops concentrating on Bless.", r.content)
}

func (s *HandlerTestSuite) TestFlag() {
	set := s.run("player", SubcommandFlag, opts("character", "Gandalf", "name", "concentrationAdvantage", "value", "TRUE"))
	s.Equal("Set Concentration Advantage to true for Gandalf.", set.content)

	actor, err := s.provider.DocumentService.FindActor(s.ctx, "a1")
	s.Require().NoError(err)
	value, ok := actor.Flag("concentrationAdvantage")
	s.True(ok)
	s.Equal("true", value)

	cleared := s.run("player", SubcommandFlag, opts("character", "Gandalf", "name", "concentrationAdvantage"))
	s.Equal("Cleared Concentration Advantage for Gandalf.", cleared.content)

	_, err = s.handler.runCommand(s.ctx, "player", SubcommandFlag, opts("character", "Gandalf", "name", "concentrationFloor", "value", "25"))
	s.Require().Error(err)
	s.Contains(s.handler.errorReply(err).content, "Could not set Concentration Minimum")
}

func (s *HandlerTestSuite) TestSpellChoices() {
	choices := s.handler.spellChoices(s.ctx, opts("character", "Gandalf", "spell", "B"))
	s.Require().Len(choices, 1)
	s.Equal("Bless", choices[0].Name)

	s.dndClient.EXPECT().ListSpellsByLevel(1).Return([]*dnd5e.SpellReference{
		{Key: "bless", Name: "Bless"},
		{Key: "bane", Name: "Bane"},
		{Key: "shield", Name: "Shield"},
	}, nil)

	choices = s.handler.spellChoices(s.ctx, opts("character", "Gandalf", "spell", "b", "level", 1))
	var names []string
	for _, c := range choices {
		names = append(names, c.Name)
	}
	s.Equal([]string{"Bless", "Bane"}, names)
}

func (s *HandlerTestSuite) TestUnknownActions() {
	_, err := s.handler.runCommand(s.ctx, "player", "teleport", opts())
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.handler.runComponent(s.ctx, "player", CustomID{Action: "pop_out", Target: "m1"})
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestErrorReply() {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "warning", err: dnderr.InvalidArgument("no actor").Warn("CN.WARN.MISSING_ACTOR"), want: "⚠️ No actor was provided for the saving throw."},
		{name: "error", err: dnderr.NotConcentratingf("nope").Fail("CN.WARN.MISSING_CONC"), want: "❌ The actor is not concentrating on anything."},
		{name: "not found", err: dnderr.Wrap(dnderr.NotFound("No character called Bob."), "lookup"), want: "❌ lookup"},
		{name: "internal", err: dnderr.New(dnderr.CodeInternal, "redis is down"), want: "❌ Something went wrong, please try again."},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.handler.errorReply(tt.err).content)
		})
	}
}
