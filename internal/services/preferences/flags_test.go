package preferences

import (
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestReadFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
		want  Flags
	}{
		{
			name: "defaults",
			want: Flags{Ability: entities.AbilityConstitution, Floor: 1, Ceiling: 20},
		},
		{
			name: "all set",
			flags: map[string]string{
				FlagBonus:     "1d4",
				FlagAbility:   "WIS",
				FlagAdvantage: "true",
				FlagReliable:  "1",
				FlagFloor:     "10",
				FlagCeiling:   "18",
			},
			want: Flags{Bonus: "1d4", Ability: entities.AbilityWisdom, Advantage: true, Reliable: true, Floor: 10, Ceiling: 18},
		},
		{
			name: "invalid values fall back",
			flags: map[string]string{
				FlagBonus:     "lots",
				FlagAbility:   "luck",
				FlagAdvantage: "maybe",
				FlagFloor:     "25",
				FlagCeiling:   "zero",
			},
			want: Flags{Ability: entities.AbilityConstitution, Floor: 1, Ceiling: 20},
		},
		{
			name:  "negative floor",
			flags: map[string]string{FlagFloor: "-3", FlagCeiling: "0"},
			want:  Flags{Ability: entities.AbilityConstitution, Floor: 1, Ceiling: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadFlags(&entities.Actor{Flags: tt.flags})
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, entities.AbilityConstitution, ReadFlags(nil).Ability)
}

func TestFlags_ClampActivity(t *testing.T) {
	tests := []struct {
		floor, ceiling       int
		useFloor, useCeiling bool
	}{
		{floor: 1, ceiling: 20},
		{floor: 2, ceiling: 19, useFloor: true, useCeiling: true},
		{floor: 20, ceiling: 1, useFloor: true, useCeiling: true},
		{floor: 21, ceiling: 0},
		{floor: 10, ceiling: 20, useFloor: true},
	}

	for _, tt := range tests {
		f := Flags{Floor: tt.floor, Ceiling: tt.ceiling}
		assert.Equal(t, tt.useFloor, f.UseFloor(), "floor %d", tt.floor)
		assert.Equal(t, tt.useCeiling, f.UseCeiling(), "ceiling %d", tt.ceiling)
	}
}
