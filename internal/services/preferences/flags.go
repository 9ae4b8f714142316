package preferences

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Actor flag names
const (
	FlagBonus     = "concentrationBonus"
	FlagAbility   = "concentrationAbility"
	FlagAdvantage = "concentrationAdvantage"
	FlagReliable  = "concentrationReliable"
	FlagFloor     = "concentrationFloor"
	FlagCeiling   = "concentrationCeiling"
)

// Die limits of the d20 clamp
const (
	minFace = 1
	maxFace = 20
)

// Flags is the typed view of an actor's concentration flags
type Flags struct {
	Bonus     string // Dice expression, empty for none
	Ability   entities.Ability
	Advantage bool
	Reliable  bool
	Floor     int
	Ceiling   int
}

// UseFloor reports whether the floor changes any d20 result
func (f Flags) UseFloor() bool {
	return maxFace >= f.Floor && f.Floor > minFace
}

// UseCeiling reports whether the ceiling changes any d20 result
func (f Flags) UseCeiling() bool {
	return maxFace > f.Ceiling && f.Ceiling > 0
}

// ReadFlags reads an actor's flags. Unusable values fall back to defaults.
func ReadFlags(actor *entities.Actor) Flags {
	flags := Flags{
		Ability: entities.AbilityConstitution,
		Floor:   minFace,
		Ceiling: maxFace,
	}
	if actor == nil {
		return flags
	}

	if v, ok := actor.Flag(FlagBonus); ok {
		if _, err := dice.ParseExpression(v); err == nil {
			flags.Bonus = strings.TrimSpace(v)
		}
	}
	if v, ok := actor.Flag(FlagAbility); ok {
		if ability := entities.Ability(strings.ToLower(strings.TrimSpace(v))); ability.Valid() {
			flags.Ability = ability
		}
	}
	flags.Advantage = boolFlag(actor, FlagAdvantage)
	flags.Reliable = boolFlag(actor, FlagReliable)

	if v, ok := numberFlag(actor, FlagFloor); ok && v >= minFace && v <= maxFace {
		flags.Floor = v
	}
	if v, ok := numberFlag(actor, FlagCeiling); ok && v >= minFace && v <= maxFace {
		flags.Ceiling = v
	}

	return flags
}

func boolFlag(actor *entities.Actor, name string) bool {
	v, ok := actor.Flag(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func numberFlag(actor *entities.Actor, name string) (int, bool) {
	v, ok := actor.Flag(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
