package discord

import (
	"context"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/services/preferences"
	"github.com/bwmarrin/discordgo"
)

// Subcommands of /concentration
const (
	SubcommandRegister = "register"
	SubcommandCast     = "cast"
	SubcommandDamage   = "damage"
	SubcommandStatus   = "status"
	SubcommandEnd      = "end"
	SubcommandFlag     = "flag"
)

const (
	defaultProficiencyBonus = 2

	// Discord shows at most this many autocomplete choices
	maxChoices = 25
)

func (h *Handler) commands() []*discordgo.ApplicationCommand {
	minLevel := 0.0
	minOne := 1.0

	character := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "character",
		Description: "Character name or id",
		Required:    true,
	}

	// Flags are registered on ready, registering again is harmless
	h.ServiceProvider.PreferencesService.RegisterActorFlags()
	var flagChoices []*discordgo.ApplicationCommandOptionChoice
	for _, def := range h.ServiceProvider.PreferencesService.Definitions() {
		flagChoices = append(flagChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  def.Label,
			Value: def.Name,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Track concentration on spells",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandRegister,
					Description: "Register a character you control",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Character name", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "hp", Description: "Maximum hit points", Required: true, MinValue: &minOne},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "constitution", Description: "Constitution score (default 10)", MinValue: &minOne, MaxValue: 30},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "proficient", Description: "Proficient in Constitution saves"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "proficiency", Description: "Proficiency bonus (default 2)", MinValue: &minOne, MaxValue: 9},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandCast,
					Description: "Cast a spell",
					Options: []*discordgo.ApplicationCommandOption{
						character,
						{Type: discordgo.ApplicationCommandOptionString, Name: "spell", Description: "Spell name", Required: true, Autocomplete: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "level", Description: "Slot level (default the spell's level)", MinValue: &minLevel, MaxValue: 9},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandDamage,
					Description: "Deal damage to a character",
					Options: []*discordgo.ApplicationCommandOption{
						character,
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Damage taken", Required: true, MinValue: &minOne},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandStatus,
					Description: "Show what a character is concentrating on",
					Options:     []*discordgo.ApplicationCommandOption{character},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandEnd,
					Description: "End concentration",
					Options: []*discordgo.ApplicationCommandOption{
						character,
						{Type: discordgo.ApplicationCommandOptionString, Name: "spell", Description: "Only end this spell"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "force", Description: "Skip the confirmation"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandFlag,
					Description: "Set a concentration option on a character",
					Options: []*discordgo.ApplicationCommandOption{
						character,
						{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Option", Required: true, Choices: flagChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "value", Description: "New value, leave empty to clear"},
					},
				},
			},
		},
	}
}

// runCommand executes one /concentration subcommand
func (h *Handler) runCommand(ctx context.Context, userID, subcommand string, opts commandOptions) (*reply, error) {
	switch subcommand {
	case SubcommandRegister:
		return h.runRegister(ctx, userID, opts)
	case SubcommandCast:
		return h.runCast(ctx, userID, opts)
	case SubcommandDamage:
		return h.runDamage(ctx, userID, opts)
	case SubcommandStatus:
		return h.runStatus(ctx, opts)
	case SubcommandEnd:
		return h.runEnd(ctx, userID, opts)
	case SubcommandFlag:
		return h.runFlag(ctx, userID, opts)
	default:
		return nil, dnderr.InvalidArgumentf("unknown subcommand %s", subcommand)
	}
}

func (h *Handler) runRegister(ctx context.Context, userID string, opts commandOptions) (*reply, error) {
	name := opts.String("name")
	hp, _ := opts.Int("hp")
	if name == "" || hp <= 0 {
		return nil, dnderr.InvalidArgument("a name and positive hit points are required")
	}

	constitution, ok := opts.Int("constitution")
	if !ok {
		constitution = 10
	}
	proficiency, ok := opts.Int("proficiency")
	if !ok {
		proficiency = defaultProficiencyBonus
	}

	abilities := make(map[entities.Ability]*entities.AbilityScore, len(entities.Abilities))
	for _, ability := range entities.Abilities {
		abilities[ability] = &entities.AbilityScore{Score: 10}
	}
	abilities[entities.AbilityConstitution] = &entities.AbilityScore{
		Score:          constitution,
		SaveProficient: opts.Bool("proficient"),
	}

	actor, err := h.ServiceProvider.DocumentService.CreateActor(ctx, &entities.Actor{
		Name:             name,
		Type:             "character",
		HitPoints:        entities.HitPoints{Value: hp, Max: hp},
		Abilities:        abilities,
		ProficiencyBonus: proficiency,
		Permissions:      map[string]entities.PermissionLevel{userID: entities.PermissionOwner},
	})
	if err != nil {
		return nil, err
	}

	return &reply{
		content:   h.localizer.Format("CN.DISCORD.REGISTERED", actor.Name, actor.HitPoints.Max),
		ephemeral: true,
	}, nil
}

func (h *Handler) runCast(ctx context.Context, userID string, opts commandOptions) (*reply, error) {
	actor, err := h.controlledActor(ctx, userID, opts.String("character"))
	if err != nil {
		return nil, err
	}

	item, err := h.ensureSpell(ctx, actor, opts.String("spell"), userID)
	if err != nil {
		return nil, err
	}

	level, ok := opts.Int("level")
	if !ok {
		level = item.Level
	}
	if level < item.Level {
		return nil, dnderr.InvalidArgument(h.localizer.Format("CN.DISCORD.LOW_LEVEL", item.Name, item.Level))
	}

	castText := h.localizer.Format("CN.DISCORD.CAST", actor.Name, item.Name, level)
	_, err = h.ServiceProvider.DocumentService.CreateMessage(ctx, &entities.Message{
		Kind:    entities.MessageKindCast,
		Speaker: entities.Speaker{Alias: actor.Name, ActorID: actor.ID},
		Card: &entities.Card{
			Title:   item.Name,
			Icon:    item.Img,
			Content: castText,
			Details: item.Description,
		},
		Cast: &entities.CastData{
			ActorID:    actor.ID,
			ItemID:     item.ID,
			SpellLevel: strconv.Itoa(level),
		},
	}, userID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to cast %s", item.Name)
	}

	content := castText
	if !item.Concentration {
		content += "\n" + h.localizer.Format("CN.DISCORD.NOT_CONCENTRATION_SPELL", item.Name)
	} else if effect, ok := h.ServiceProvider.ConcentrationService.WaitForConcentration(ctx, actor, item); ok {
		content += "\n" + h.localizer.Format("CN.MESSAGE.CONC_GAIN", actor.Name, effect.ItemName())
	}

	return &reply{content: content, ephemeral: true}, nil
}

// ensureSpell finds the spell among the actor's items, adding it from the
// SRD when the actor does not have it yet
func (h *Handler) ensureSpell(ctx context.Context, actor *entities.Actor, name, userID string) (*entities.Item, error) {
	if name == "" {
		return nil, dnderr.InvalidArgument("a spell name is required")
	}

	if item := findItem(actor, name); item != nil {
		return item, nil
	}

	if h.ServiceProvider.DNDClient == nil {
		return nil, dnderr.NotFound(h.localizer.Format("CN.DISCORD.UNKNOWN_SPELL", name))
	}

	spell, err := h.ServiceProvider.DNDClient.GetSpell(dnd5e.SpellKey(name))
	if err != nil {
		if dnderr.IsNotFound(err) {
			return nil, dnderr.NotFound(h.localizer.Format("CN.DISCORD.UNKNOWN_SPELL", name))
		}
		return nil, err
	}

	updated, err := h.ServiceProvider.DocumentService.UpdateActor(ctx, actor.ID, &entities.ActorPatch{
		AddItems: []*entities.Item{spell},
	}, userID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to add %s to %s", spell.Name, actor.Name)
	}

	*actor = *updated
	return updated.GetItem(spell.ID), nil
}

// findItem matches an owned item by id, SRD key or name
func findItem(actor *entities.Actor, name string) *entities.Item {
	key := dnd5e.SpellKey(name)
	for _, item := range actor.Items {
		if item.ID == name || item.ID == key || strings.EqualFold(item.Name, name) {
			return item
		}
	}
	return nil
}

func (h *Handler) runDamage(ctx context.Context, userID string, opts commandOptions) (*reply, error) {
	actor, err := h.controlledActor(ctx, userID, opts.String("character"))
	if err != nil {
		return nil, err
	}

	amount, _ := opts.Int("amount")
	if amount <= 0 {
		return nil, dnderr.InvalidArgument("damage must be positive")
	}

	patch := actor.HitPoints.Patch(actor.HitPoints.AfterDamage(amount))
	updated, err := h.ServiceProvider.DocumentService.UpdateActor(ctx, actor.ID, &entities.ActorPatch{HitPoints: patch}, userID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to damage %s", actor.Name)
	}

	return &reply{
		content: h.localizer.Format("CN.DISCORD.DAMAGE", updated.Name, amount, updated.HitPoints.Value, updated.HitPoints.Max),
	}, nil
}

func (h *Handler) runStatus(ctx context.Context, opts commandOptions) (*reply, error) {
	actor, err := h.findActor(ctx, opts.String("character"))
	if err != nil {
		return nil, err
	}

	effect, err := h.ServiceProvider.ConcentrationService.IsConcentratingOnAnything(ctx, actor)
	if err != nil {
		return nil, err
	}
	if effect == nil {
		return &reply{content: h.localizer.Format("CN.DISCORD.STATUS_NONE", actor.Name), ephemeral: true}, nil
	}

	level := 0
	if effect.Concentration != nil {
		level = effect.Concentration.Casting.CastLevel
	}
	return &reply{
		content:   h.localizer.Format("CN.DISCORD.STATUS_ACTIVE", actor.Name, effect.ItemName(), level),
		ephemeral: true,
	}, nil
}

func (h *Handler) runEnd(ctx context.Context, userID string, opts commandOptions) (*reply, error) {
	actor, err := h.controlledActor(ctx, userID, opts.String("character"))
	if err != nil {
		return nil, err
	}
	concSvc := h.ServiceProvider.ConcentrationService

	if spell := opts.String("spell"); spell != "" {
		item := findItem(actor, spell)
		if item == nil {
			return nil, dnderr.NotFound(h.localizer.Format("CN.DISCORD.UNKNOWN_SPELL", spell))
		}
		ended, err := concSvc.EndConcentrationOnItem(ctx, actor, item, userID)
		if err != nil {
			return nil, err
		}
		return h.endedReply(actor, ended, false), nil
	}

	if !opts.Bool("force") {
		current, err := concSvc.IsConcentratingOnAnything(ctx, actor)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return &reply{content: h.localizer.Format("CN.DISCORD.STATUS_NONE", actor.Name), ephemeral: true}, nil
		}
		return &reply{
			content: h.localizer.Format("CN.DISCORD.END_PROMPT", actor.Name),
			components: buildConfirmComponents(CustomID{Action: ActionEndConfirm, Target: actor.ID},
				h.localizer.Localize("CN.DISCORD.CONFIRM"), h.localizer.Localize("CN.DISCORD.CANCEL")),
			ephemeral: true,
		}, nil
	}

	ended, err := concSvc.EndConcentrationOnActor(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	return h.endedReply(actor, ended, false), nil
}

func (h *Handler) endedReply(actor *entities.Actor, ended []*entities.Effect, update bool) *reply {
	if len(ended) == 0 {
		return &reply{content: h.localizer.Format("CN.DISCORD.STATUS_NONE", actor.Name), ephemeral: true, update: update}
	}

	lines := make([]string, 0, len(ended))
	for _, effect := range ended {
		lines = append(lines, h.localizer.Format("CN.DISCORD.ENDED", actor.Name, effect.ItemName()))
	}
	return &reply{content: strings.Join(lines, "\n"), ephemeral: true, update: update}
}

func (h *Handler) runFlag(ctx context.Context, userID string, opts commandOptions) (*reply, error) {
	actor, err := h.controlledActor(ctx, userID, opts.String("character"))
	if err != nil {
		return nil, err
	}

	name := opts.String("name")
	value := opts.String("value")

	label := name
	defs := h.ServiceProvider.PreferencesService.Definitions()
	if i := slices.IndexFunc(defs, func(d preferences.FlagDefinition) bool { return d.Name == name }); i >= 0 {
		label = defs[i].Label
	}

	updated, err := h.ServiceProvider.PreferencesService.SetActorFlag(ctx, actor.ID, name, value, userID)
	if err != nil {
		if dnderr.IsValidation(err) || dnderr.IsInvalidArgument(err) {
			return nil, dnderr.InvalidArgument(h.localizer.Format("CN.DISCORD.FLAG_INVALID", label, userMessage(err)))
		}
		return nil, err
	}

	if value == "" {
		return &reply{content: h.localizer.Format("CN.DISCORD.FLAG_CLEARED", label, updated.Name), ephemeral: true}, nil
	}
	stored, _ := updated.Flag(name)
	return &reply{content: h.localizer.Format("CN.DISCORD.FLAG_SET", label, stored, updated.Name), ephemeral: true}, nil
}

func (h *Handler) findActor(ctx context.Context, idOrName string) (*entities.Actor, error) {
	if idOrName == "" {
		return nil, dnderr.InvalidArgument("a character is required")
	}

	actor, err := h.ServiceProvider.DocumentService.FindActor(ctx, idOrName)
	if err != nil {
		if dnderr.IsNotFound(err) {
			return nil, dnderr.NotFound(h.localizer.Format("CN.DISCORD.UNKNOWN_ACTOR", idOrName))
		}
		return nil, err
	}
	return actor, nil
}

// controlledActor finds an actor the user owns. GMs control every actor.
func (h *Handler) controlledActor(ctx context.Context, userID, idOrName string) (*entities.Actor, error) {
	actor, err := h.findActor(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if actor.Permissions[userID] == entities.PermissionOwner {
		return actor, nil
	}

	user, err := h.ServiceProvider.DocumentService.GetUser(ctx, userID)
	if err != nil && !dnderr.IsNotFound(err) {
		return nil, err
	}
	if user != nil && user.IsGM {
		return actor, nil
	}

	return nil, dnderr.New(dnderr.CodePermissionDenied, h.localizer.Format("CN.DISCORD.NOT_OWNER", actor.Name)).
		WithMeta("actor_id", actor.ID).
		WithMeta("user_id", userID)
}

// spellChoices suggests the character's spells, then SRD spells of the
// chosen level, matching what was typed so far
func (h *Handler) spellChoices(ctx context.Context, opts commandOptions) []*discordgo.ApplicationCommandOptionChoice {
	typed := strings.ToLower(opts.String("spell"))
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	seen := map[string]bool{}

	add := func(name string) {
		key := strings.ToLower(name)
		if len(choices) >= maxChoices || seen[key] || !strings.Contains(key, typed) {
			return
		}
		seen[key] = true
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	if actor, err := h.ServiceProvider.DocumentService.FindActor(ctx, opts.String("character")); err == nil {
		for _, item := range actor.Items {
			if item.Type == "spell" {
				add(item.Name)
			}
		}
	}

	level, ok := opts.Int("level")
	if !ok || h.ServiceProvider.DNDClient == nil {
		return choices
	}

	refs, err := h.ServiceProvider.DNDClient.ListSpellsByLevel(level)
	if err != nil {
		log.Printf("[DISCORD] Failed to list level %d spells: %v", level, err)
		return choices
	}
	for _, ref := range refs {
		add(ref.Name)
	}
	return choices
}
