package dnd5e

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
)

// SourcePrefix marks items imported from the SRD
const SourcePrefix = "dnd5e:"

// convertSpell converts an API spell to an unowned item
func convertSpell(apiSpell *apiEntities.Spell) *entities.Item {
	item := &entities.Item{
		ID:            apiSpell.Key,
		Name:          apiSpell.Name,
		Type:          "spell",
		Level:         apiSpell.SpellLevel,
		Duration:      ParseDuration(apiSpell.Duration),
		Concentration: apiSpell.Concentration,
		Source:        SourcePrefix + apiSpell.Key,
	}

	if apiSpell.SpellSchool != nil {
		item.School = apiSpell.SpellSchool.Name
	}

	return item
}

var durationPattern = regexp.MustCompile(`(\d+)\s*(round|turn|minute|hour|day|month|year)s?`)

// ParseDuration reads SRD duration text such as "Concentration, up to 1 minute"
func ParseDuration(text string) entities.ItemDuration {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case lower == "" || strings.Contains(lower, "instantaneous"):
		return entities.ItemDuration{Units: entities.UnitInstant}
	case strings.Contains(lower, "until dispelled"):
		return entities.ItemDuration{Units: entities.UnitPermanent}
	}

	match := durationPattern.FindStringSubmatch(lower)
	if match == nil {
		return entities.ItemDuration{Units: entities.UnitSpecial}
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return entities.ItemDuration{Units: entities.UnitSpecial}
	}
	return entities.ItemDuration{Value: value, Units: entities.DurationUnit(match[2])}
}
