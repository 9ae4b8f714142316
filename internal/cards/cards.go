// Package cards builds the content of concentration announcements
package cards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
)

// Builder renders cards in one locale
type Builder struct {
	localizer i18n.Localizer
}

// NewBuilder creates a card builder
func NewBuilder(localizer i18n.Localizer) *Builder {
	if localizer == nil {
		panic("localizer is required")
	}
	return &Builder{localizer: localizer}
}

// Speaker is the alias announcements of this bot are posted under
func (b *Builder) Speaker() string {
	return b.localizer.Localize("CN.MESSAGE.SPEAKER")
}

// ConcentrationGained announces a new concentration effect
func (b *Builder) ConcentrationGained(actorName string, effect *entities.Effect) *entities.Card {
	return b.notice("CN.MESSAGE.CONC_GAIN", actorName, effect)
}

// ConcentrationLost announces a removed concentration effect
func (b *Builder) ConcentrationLost(actorName string, effect *entities.Effect) *entities.Card {
	return b.notice("CN.MESSAGE.CONC_LOSS", actorName, effect)
}

func (b *Builder) notice(key, actorName string, effect *entities.Effect) *entities.Card {
	return &entities.Card{
		Title:   b.localizer.Localize("CN.NAME.CARD_NAME"),
		Icon:    effect.Icon,
		Content: b.localizer.Format(key, actorName, effect.ItemName()),
		Details: effect.ItemDescription(),
	}
}

// SaveRequestInput is what a save prompt shows
type SaveRequestInput struct {
	ActorName   string
	ItemName    string
	AbilityName string
	Icon        string
	Damage      int // Zero when the save was not caused by damage
	DC          int
}

// SaveRequest builds the interactive save prompt
func (b *Builder) SaveRequest(in SaveRequestInput) *entities.Card {
	saveLabel := b.localizer.Format("CN.LABEL.SAVING_THROW", in.DC, in.AbilityName)

	content := saveLabel
	if in.Damage > 0 {
		content = b.localizer.Format("CN.MESSAGE.CONC_SAVE", in.ActorName, in.Damage, in.DC, in.AbilityName, in.ItemName)
	}

	return &entities.Card{
		Title:   b.localizer.Localize("CN.NAME.CARD_NAME"),
		Icon:    in.Icon,
		Content: content,
		Buttons: []entities.CardButton{
			{Action: entities.ButtonSave, Label: saveLabel},
			{Action: entities.ButtonDelete, Label: b.localizer.Localize("CN.LABEL.DELETE_CONC")},
		},
	}
}

// SaveResultInput is what a save result shows
type SaveResultInput struct {
	ActorName   string
	ItemName    string
	AbilityName string
	Roll        *dice.RollResult
	DC          int // Zero when there was no target
}

// SaveResult reports a rolled concentration save
func (b *Builder) SaveResult(in SaveResultInput) *entities.Card {
	var content string
	switch {
	case in.DC <= 0:
		content = b.localizer.Format("CN.SAVE.NO_DC", in.ActorName, in.Roll.Total, in.ItemName)
	case in.Roll.Total >= in.DC:
		content = b.localizer.Format("CN.SAVE.SUCCESS", in.ActorName, in.ItemName, in.Roll.Total, in.DC)
	default:
		content = b.localizer.Format("CN.SAVE.FAILURE", in.ActorName, in.ItemName, in.Roll.Total, in.DC)
	}

	return &entities.Card{
		Title:   b.localizer.Format("CN.SAVE.TITLE", in.AbilityName),
		Content: content,
		Fields: []entities.CardField{
			{Name: b.localizer.Localize("CN.SAVE.FORMULA"), Value: in.Roll.Formula(), Inline: true},
			{Name: b.localizer.Localize("CN.SAVE.DICE"), Value: FormatDice(in.Roll), Inline: true},
			{Name: b.localizer.Localize("CN.SAVE.TOTAL"), Value: strconv.Itoa(in.Roll.Total), Inline: true},
		},
	}
}

// DeletePrompt asks the user to confirm removing concentration
func (b *Builder) DeletePrompt(itemName string) *entities.Card {
	return &entities.Card{
		Title: b.localizer.Format("CN.DELETE_DIALOG_TITLE", itemName),
		Content: b.localizer.Format("CN.DELETE_DIALOG_TEXT", itemName) + "\n" +
			b.localizer.Localize("CN.ARE_YOU_SURE"),
	}
}

// FormatDice renders each die. Adjusted dice show the rolled value struck
// through, discarded dice are wrapped in parentheses.
func FormatDice(roll *dice.RollResult) string {
	if roll == nil || len(roll.Dice) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(roll.Dice))
	for _, d := range roll.Dice {
		text := strconv.Itoa(d.Count)
		if d.Adjusted {
			text = fmt.Sprintf("~~%d~~ %d", d.Value, d.Count)
		}
		if d.Discarded {
			text = "(" + text + ")"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, ", ")
}
