package saves

import (
	"fmt"

	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/services/preferences"
)

const (
	// CritThreshold is one above a natural d20, so concentration saves never crit
	CritThreshold = 21
	// FumbleThreshold is the highest kept d20 that fumbles
	FumbleThreshold = 1

	reliableFloor = 10
)

// ApplyRollAdjustment clamps every d20 of the roll to the actor's floor and
// ceiling, then recomputes the total. Applying it again changes nothing.
// It reports whether any die changed.
func ApplyRollAdjustment(roll *dice.RollResult, flags preferences.Flags) bool {
	if roll == nil || roll.Sides != 20 {
		return false
	}

	useFloor, useCeiling := flags.UseFloor(), flags.UseCeiling()
	if !useFloor && !useCeiling {
		return false
	}

	changed := false
	for i := range roll.Dice {
		die := &roll.Dice[i]
		count := die.Count
		if useFloor && count < flags.Floor {
			count = flags.Floor
		}
		if useCeiling && count > flags.Ceiling {
			count = flags.Ceiling
		}
		if count != die.Count {
			die.Count = count
			die.Adjusted = true
			changed = true
		}
	}

	if useFloor {
		addModifier(roll, fmt.Sprintf("min%d", flags.Floor))
	}
	if useCeiling {
		addModifier(roll, fmt.Sprintf("max%d", flags.Ceiling))
	}

	roll.Recalculate()
	markCritAndFumble(roll)
	return changed
}

// applyReliable treats every d20 below 10 as a 10
func applyReliable(roll *dice.RollResult) {
	for i := range roll.Dice {
		if roll.Dice[i].Count < reliableFloor {
			roll.Dice[i].Count = reliableFloor
			roll.Dice[i].Adjusted = true
		}
	}
	addModifier(roll, fmt.Sprintf("min%d", reliableFloor))
	roll.Recalculate()
}

func markCritAndFumble(roll *dice.RollResult) {
	natural := roll.Natural()
	roll.IsCrit = natural >= CritThreshold
	roll.IsFumble = natural <= FumbleThreshold
}

func addModifier(roll *dice.RollResult, modifier string) {
	for _, m := range roll.Modifiers {
		if m == modifier {
			return
		}
	}
	roll.Modifiers = append(roll.Modifiers, modifier)
}
