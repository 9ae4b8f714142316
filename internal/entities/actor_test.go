package entities_test

import (
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWizard() *entities.Actor {
	return &entities.Actor{
		ID:   "wiz",
		Name: "Elminster",
		Abilities: map[entities.Ability]*entities.AbilityScore{
			entities.AbilityConstitution: {Score: 14, SaveProficient: true},
			entities.AbilityStrength:     {Score: 7},
		},
		ProficiencyBonus: 3,
		HitPoints:        entities.HitPoints{Value: 20, Max: 30, Temp: 5},
		Permissions: map[string]entities.PermissionLevel{
			"player-2": entities.PermissionOwner,
			"gm":       entities.PermissionOwner,
			"player-1": entities.PermissionOwner,
			"observer": entities.PermissionObserver,
		},
		Items: []*entities.Item{{ID: "bless", ActorID: "wiz", Name: "Bless", Concentration: true}},
	}
}

func TestActor_SaveBonus(t *testing.T) {
	actor := newWizard()

	assert.Equal(t, 2, actor.AbilityModifier(entities.AbilityConstitution))
	assert.Equal(t, 5, actor.SaveBonus(entities.AbilityConstitution))
	assert.Equal(t, -2, actor.SaveBonus(entities.AbilityStrength))
	assert.Equal(t, 0, actor.SaveBonus(entities.AbilityWisdom), "missing abilities count as 10")
}

func TestActor_OwnersAreSorted(t *testing.T) {
	actor := newWizard()
	assert.Equal(t, []string{"gm", "player-1", "player-2"}, actor.Owners())
}

func TestActor_UUID(t *testing.T) {
	actor := newWizard()
	assert.Equal(t, entities.Address("Actor.wiz"), actor.UUID())

	actor.Token = &entities.TokenRef{SceneID: "s1", TokenID: "t1"}
	assert.Equal(t, entities.Address("Scene.s1.Token.t1.Actor.wiz"), actor.UUID())
}

func TestActor_CloneIsDeep(t *testing.T) {
	actor := newWizard()
	actor.Flags = map[string]string{"concentrationAbility": "wis"}

	clone := actor.Clone()
	clone.Flags["concentrationAbility"] = "int"
	clone.Items[0].Name = "Bane"
	clone.Abilities[entities.AbilityConstitution].Score = 3

	assert.Equal(t, "wis", actor.Flags["concentrationAbility"])
	assert.Equal(t, "Bless", actor.Items[0].Name)
	assert.Equal(t, 14, actor.Abilities[entities.AbilityConstitution].Score)
}

func TestActorPatch_Apply(t *testing.T) {
	actor := newWizard()
	actor.Flags = map[string]string{"old": "x"}

	value, temp := 12, 0
	bonus := "+2"
	patch := &entities.ActorPatch{
		HitPoints: &entities.HitPointsPatch{Value: &value, Temp: &temp},
		Flags:     map[string]*string{"concentrationBonus": &bonus, "old": nil},
	}
	patch.Apply(actor)

	assert.Equal(t, entities.HitPoints{Value: 12, Temp: 0, Max: 30}, actor.HitPoints)
	assert.Equal(t, map[string]string{"concentrationBonus": "+2"}, actor.Flags)
}

func TestHitPoints_AfterDamage(t *testing.T) {
	tests := []struct {
		name   string
		hp     entities.HitPoints
		amount int
		want   entities.HitPoints
	}{
		{
			name:   "absorbed by temp",
			hp:     entities.HitPoints{Value: 10, Temp: 5, Max: 10},
			amount: 3,
			want:   entities.HitPoints{Value: 10, Temp: 2, Max: 10},
		},
		{
			name:   "spills past temp",
			hp:     entities.HitPoints{Value: 10, Temp: 5, Max: 10},
			amount: 8,
			want:   entities.HitPoints{Value: 7, Temp: 0, Max: 10},
		},
		{
			name:   "never below zero",
			hp:     entities.HitPoints{Value: 4, Max: 10},
			amount: 30,
			want:   entities.HitPoints{Value: 0, Max: 10},
		},
		{
			name:   "negative damage heals to max",
			hp:     entities.HitPoints{Value: 8, Max: 10},
			amount: -5,
			want:   entities.HitPoints{Value: 10, Max: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hp.AfterDamage(tt.amount))
		})
	}
}

func TestHitPoints_Patch(t *testing.T) {
	before := entities.HitPoints{Value: 10, Temp: 5, Max: 10}
	patch := before.Patch(before.AfterDamage(8))

	require.NotNil(t, patch.Value)
	require.NotNil(t, patch.Temp)
	assert.Nil(t, patch.Max)
	assert.Equal(t, 7, *patch.Value)
	assert.Equal(t, 0, *patch.Temp)
}

func TestResolveActor(t *testing.T) {
	actor := newWizard()
	token := &entities.Token{ID: "t1", SceneID: "s1", ActorID: actor.ID, Linked: true, Actor: actor}

	assert.Same(t, actor, entities.ResolveActor(actor))
	assert.Same(t, actor, entities.ResolveActor(token))
	assert.Nil(t, entities.ResolveActor(&entities.Token{ID: "orphan"}))
	assert.Nil(t, entities.ResolveActor((*entities.Actor)(nil)))
	assert.Nil(t, entities.ResolveActor(nil))
}

func TestAbility_Valid(t *testing.T) {
	assert.True(t, entities.Ability("wis").Valid())
	assert.False(t, entities.Ability("luck").Valid())
	assert.Equal(t, "DND5E.AbilityCon", entities.AbilityConstitution.LocalizationKey())
}
