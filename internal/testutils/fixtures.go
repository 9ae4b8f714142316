package testutils

import (
	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// CreateTestCaster creates a world actor owned by ownerID with a middling
// constitution save
func CreateTestCaster(id, ownerID, name string) *entities.Actor {
	return &entities.Actor{
		ID:   id,
		Name: name,
		Type: "character",
		HitPoints: entities.HitPoints{
			Value: 30,
			Max:   30,
		},
		Abilities: map[entities.Ability]*entities.AbilityScore{
			entities.AbilityStrength:     {Score: 8},
			entities.AbilityDexterity:    {Score: 14},
			entities.AbilityConstitution: {Score: 14, SaveProficient: true},
			entities.AbilityIntelligence: {Score: 18},
			entities.AbilityWisdom:       {Score: 12},
			entities.AbilityCharisma:     {Score: 10},
		},
		ProficiencyBonus: 2,
		Permissions: map[string]entities.PermissionLevel{
			ownerID: entities.PermissionOwner,
		},
	}
}

// CreateTestSpell creates a concentration spell owned by actorID
func CreateTestSpell(actorID, id, name string, level int) *entities.Item {
	return &entities.Item{
		ID:            id,
		ActorID:       actorID,
		Name:          name,
		Type:          "spell",
		Level:         level,
		Duration:      entities.ItemDuration{Value: 1, Units: entities.UnitMinute},
		Concentration: true,
		Description:   name + " description",
	}
}

// CreateTestCastMessage creates the announcement of actorID using itemID at spellLevel
func CreateTestCastMessage(userID, actorID, itemID, spellLevel string) *entities.Message {
	return &entities.Message{
		Kind:   entities.MessageKindCast,
		UserID: userID,
		Cast: &entities.CastData{
			ActorID:    actorID,
			ItemID:     itemID,
			SpellLevel: spellLevel,
		},
	}
}
