package discord

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/bwmarrin/discordgo"
)

// runComponent executes a button press
func (h *Handler) runComponent(ctx context.Context, userID string, id CustomID) (*reply, error) {
	notifier := h.ServiceProvider.NotifierService

	switch id.Action {
	case ActionSave:
		result, err := notifier.MakeSave(ctx, id.Target, userID)
		if err != nil {
			return nil, err
		}
		return &reply{
			content:   h.localizer.Format("CN.DISCORD.SAVE_ROLLED", result.Roll.Total),
			ephemeral: true,
		}, nil

	case ActionDelete:
		result, err := notifier.DeleteConcentration(ctx, id.Target, userID, false)
		if err != nil {
			return nil, h.deleteError(err)
		}
		if result.Deleted {
			return &reply{content: h.localizer.Format("CN.DISCORD.REMOVED", result.Effect.ItemName()), ephemeral: true}, nil
		}
		prompt := &entities.Message{Card: result.Prompt}
		return &reply{
			embeds: []*discordgo.MessageEmbed{buildCardEmbed(prompt, "")},
			components: buildConfirmComponents(CustomID{Action: ActionDeleteConfirm, Target: id.Target},
				h.localizer.Localize("CN.DISCORD.CONFIRM"), h.localizer.Localize("CN.DISCORD.CANCEL")),
			ephemeral: true,
		}, nil

	case ActionDeleteConfirm:
		result, err := notifier.DeleteConcentration(ctx, id.Target, userID, true)
		if err != nil {
			return nil, h.deleteError(err)
		}
		return &reply{
			content: h.localizer.Format("CN.DISCORD.REMOVED", result.Effect.ItemName()),
			update:  true,
		}, nil

	case ActionKeep:
		return &reply{content: h.localizer.Localize("CN.DISCORD.KEPT"), update: true}, nil

	case ActionEndConfirm:
		actor, err := h.controlledActor(ctx, userID, id.Target)
		if err != nil {
			return nil, err
		}
		ended, err := h.ServiceProvider.ConcentrationService.EndConcentrationOnActor(ctx, actor, userID)
		if err != nil {
			return nil, err
		}
		return h.endedReply(actor, ended, true), nil

	default:
		return nil, dnderr.InvalidArgumentf("unknown button action %s", id.Action)
	}
}

// deleteError reports an effect that is already gone in plain words
func (h *Handler) deleteError(err error) error {
	if dnderr.IsNotFound(err) {
		return dnderr.Wrap(err, h.localizer.Localize("CN.DISCORD.NOT_FOUND"))
	}
	return err
}
