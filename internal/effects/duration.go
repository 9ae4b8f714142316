package effects

import (
	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// DurationFromItem maps an item duration onto effect duration fields.
// Durations that are instant, very long or special are left unlimited.
func DurationFromItem(d entities.ItemDuration) entities.EffectDuration {
	if d.Value == 0 {
		return entities.EffectDuration{}
	}

	v := d.Value
	switch d.Units {
	case entities.UnitRound:
		return entities.EffectDuration{Rounds: &v}
	case entities.UnitTurn:
		return entities.EffectDuration{Turns: &v}
	case entities.UnitMinute:
		s := v * secondsPerMinute
		return entities.EffectDuration{Seconds: &s}
	case entities.UnitHour:
		s := v * secondsPerHour
		return entities.EffectDuration{Seconds: &s}
	case entities.UnitDay:
		s := v * secondsPerDay
		return entities.EffectDuration{Seconds: &s}
	default:
		// inst, month, year, perm, spec
		return entities.EffectDuration{}
	}
}
