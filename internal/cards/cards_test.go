package cards_test

import (
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/cards"
	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T) *cards.Builder {
	t.Helper()
	localizer, err := i18n.NewDefaultLocalizer("en-US")
	require.NoError(t, err)
	return cards.NewBuilder(localizer)
}

func blessEffect() *entities.Effect {
	return &entities.Effect{
		Label: "Bless",
		Icon:  "icons/bless.webp",
		Concentration: &entities.ConcentrationData{
			Item: &entities.Item{Name: "Bless", Description: "You bless up to three creatures."},
		},
	}
}

func TestGainAndLossNotices(t *testing.T) {
	b := newBuilder(t)

	gained := b.ConcentrationGained("Gandalf", blessEffect())
	assert.Equal(t, "Concentration Notifier", gained.Title)
	assert.Equal(t, "Gandalf is concentrating on Bless.", gained.Content)
	assert.Equal(t, "You bless up to three creatures.", gained.Details)
	assert.Equal(t, "icons/bless.webp", gained.Icon)

	lost := b.ConcentrationLost("Gandalf", blessEffect())
	assert.Equal(t, "Gandalf lost concentration on Bless.", lost.Content)
}

func TestSaveRequest(t *testing.T) {
	b := newBuilder(t)

	card := b.SaveRequest(cards.SaveRequestInput{
		ActorName:   "Gandalf",
		ItemName:    "Bless",
		AbilityName: "Constitution",
		Damage:      11,
		DC:          10,
	})

	assert.Equal(t, "Gandalf has taken 11 damage and must make a DC 10 Constitution saving throw to maintain concentration on Bless.", card.Content)
	require.Len(t, card.Buttons, 2)
	assert.Equal(t, entities.ButtonSave, card.Buttons[0].Action)
	assert.Equal(t, "DC 10 Constitution Saving Throw", card.Buttons[0].Label)
	assert.Equal(t, entities.ButtonDelete, card.Buttons[1].Action)

	noDamage := b.SaveRequest(cards.SaveRequestInput{AbilityName: "Wisdom", DC: 15})
	assert.Equal(t, "DC 15 Wisdom Saving Throw", noDamage.Content)
}

func TestSaveResult(t *testing.T) {
	b := newBuilder(t)

	roll := dice.NewRollResult(20, 2, dice.ModeNormal, 4)
	roll.Dice[0].Count = 10
	roll.Dice[0].Adjusted = true
	roll.Modifiers = []string{"min10"}
	roll.Recalculate()

	card := b.SaveResult(cards.SaveResultInput{
		ActorName:   "Gandalf",
		ItemName:    "Bless",
		AbilityName: "Constitution",
		Roll:        roll,
		DC:          12,
	})

	assert.Equal(t, "Constitution Saving Throw", card.Title)
	assert.Equal(t, "Gandalf keeps concentrating on Bless (12 vs DC 12).", card.Content)
	require.Len(t, card.Fields, 3)
	assert.Equal(t, "1d20min10 + 2", card.Fields[0].Value)
	assert.Equal(t, "~~4~~ 10", card.Fields[1].Value)
	assert.Equal(t, "12", card.Fields[2].Value)

	failed := b.SaveResult(cards.SaveResultInput{ActorName: "Gandalf", ItemName: "Bless", Roll: dice.NewRollResult(20, 0, dice.ModeNormal, 3), DC: 10})
	assert.Equal(t, "Gandalf fails to keep concentrating on Bless (3 vs DC 10).", failed.Content)

	noDC := b.SaveResult(cards.SaveResultInput{ActorName: "Gandalf", ItemName: "Bless", Roll: dice.NewRollResult(20, 0, dice.ModeNormal, 3)})
	assert.Equal(t, "Gandalf rolls 3 to keep concentrating on Bless.", noDC.Content)
}

func TestFormatDice(t *testing.T) {
	roll := dice.NewRollResult(20, 0, dice.ModeAdvantage, 7, 15)
	assert.Equal(t, "(7), 15", cards.FormatDice(roll))
	assert.Equal(t, "-", cards.FormatDice(nil))
}

func TestDeletePrompt(t *testing.T) {
	card := newBuilder(t).DeletePrompt("Bless")
	assert.Equal(t, "Remove concentration on Bless", card.Title)
	assert.Contains(t, card.Content, "Are you sure?")
}
