package concentration_test

import (
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/testutils"
)

func (s *ConcentrationServiceTestSuite) cast(message *entities.Message) {
	_, err := s.provider.DocumentService.CreateMessage(s.ctx, message, message.UserID)
	s.Require().NoError(err)
}

func (s *ConcentrationServiceTestSuite) concentrationOf(actor *entities.Actor) *entities.Effect {
	effect, err := s.svc.IsConcentratingOnAnything(s.ctx, actor)
	s.Require().NoError(err)
	return effect
}

func (s *ConcentrationServiceTestSuite) TestCastMessage_StartsConcentration() {
	s.cast(testutils.CreateTestCastMessage("player", "a1", "i2", "4"))

	effect := s.concentrationOf(s.wizard)
	s.Require().NotNil(effect)
	s.Equal("Haste", effect.ItemName())
	s.Equal(4, effect.Concentration.Casting.CastLevel)
	s.Equal(3, effect.Concentration.Casting.BaseLevel)
	s.Equal(string(entities.MessageKindCast), effect.Concentration.Message["kind"])
	s.Equal("4", effect.Concentration.Message["spell_level"])

	s.Contains(s.publisher.kinds(), entities.MessageKindCast)
	s.Contains(s.publisher.kinds(), entities.MessageKindGain)
}

func (s *ConcentrationServiceTestSuite) TestCastMessage_Ignored() {
	cantrip := &entities.Item{ID: "i3", ActorID: "a1", Name: "Fire Bolt", Type: "spell"}
	s.wizard.Items = append(s.wizard.Items, cantrip)
	s.Require().NoError(s.actorRepo.Update(s.ctx, s.wizard))

	tests := []struct {
		name    string
		message *entities.Message
	}{
		{name: "spell level not a number", message: testutils.CreateTestCastMessage("player", "a1", "i1", "high")},
		{name: "not a concentration item", message: testutils.CreateTestCastMessage("player", "a1", "i3", "0")},
		{name: "unknown item", message: testutils.CreateTestCastMessage("player", "a1", "nope", "1")},
		{name: "unknown actor", message: testutils.CreateTestCastMessage("player", "nobody", "i1", "1")},
		{name: "plain chat", message: &entities.Message{Kind: entities.MessageKindChat, UserID: "player"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.cast(tt.message)
			s.Nil(s.concentrationOf(s.wizard))
		})
	}
}

func (s *ConcentrationServiceTestSuite) TestCastMessage_WithoutSpellLevel() {
	feature := &entities.Item{
		ID: "i4", ActorID: "a1", Name: "Channel Divinity: Sacred Weapon", Type: "feat",
		Duration: entities.ItemDuration{Value: 1, Units: entities.UnitMinute}, Concentration: true,
	}
	s.wizard.Items = append(s.wizard.Items, feature)
	s.Require().NoError(s.actorRepo.Update(s.ctx, s.wizard))

	s.cast(testutils.CreateTestCastMessage("player", "a1", "i4", ""))

	effect := s.concentrationOf(s.wizard)
	s.Require().NotNil(effect)
	s.Equal("Channel Divinity: Sacred Weapon", effect.ItemName())
	s.Equal(0, effect.Concentration.Casting.CastLevel)

	// A leveled spell without a level casts at its own level
	s.cast(testutils.CreateTestCastMessage("player", "a1", "i1", " "))
	effect = s.concentrationOf(s.wizard)
	s.Require().NotNil(effect)
	s.Equal(s.wizard.GetItem("i1").Name, effect.ItemName())
	s.Equal(s.wizard.GetItem("i1").Level, effect.Concentration.Casting.CastLevel)
}

func (s *ConcentrationServiceTestSuite) TestCastMessage_ItemSnapshot() {
	message := testutils.CreateTestCastMessage("player", "a1", "gone", "2")
	message.Cast.ItemData = testutils.CreateTestSpell("", "gone", "Hold Person", 2)

	s.cast(message)

	effect := s.concentrationOf(s.wizard)
	s.Require().NotNil(effect)
	s.Equal("Hold Person", effect.ItemName())
	s.Equal(entities.ItemAddress("a1", "gone"), effect.Concentration.Casting.ItemUUID)
}

func (s *ConcentrationServiceTestSuite) TestCastMessage_UnlinkedToken() {
	goblin := testutils.CreateTestCaster("syn1", "gm", "Goblin Shaman")
	goblin.Token = &entities.TokenRef{SceneID: "s1", TokenID: "t1"}
	goblin.Items = []*entities.Item{testutils.CreateTestSpell("syn1", "i1", "Bane", 1)}
	s.Require().NoError(s.actorRepo.Create(s.ctx, goblin))
	s.Require().NoError(s.tokenRepo.Create(s.ctx, &entities.Token{
		ID: "t1", SceneID: "s1", Name: "Goblin Shaman", ActorID: "syn1",
	}))

	// The actor id alone is not enough for a token actor
	s.cast(testutils.CreateTestCastMessage("gm", "syn1", "i1", "1"))
	s.Nil(s.concentrationOf(goblin))

	message := testutils.CreateTestCastMessage("gm", "", "i1", "1")
	message.Cast.TokenID = string(entities.TokenAddress("s1", "t1"))
	s.cast(message)

	effect := s.concentrationOf(goblin)
	s.Require().NotNil(effect)
	s.Equal("Bane", effect.ItemName())
	s.Equal(goblin.UUID(), effect.Concentration.ActorUUID)
}
