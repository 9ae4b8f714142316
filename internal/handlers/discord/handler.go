package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/services"
	"github.com/bwmarrin/discordgo"
)

// CommandName is the slash command every subcommand hangs off
const CommandName = "concentration"

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider
	localizer       i18n.Localizer
	deferAfter      time.Duration
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider

	// DeferAfter is how long a reply may take before the interaction is
	// deferred. Zero uses DefaultDeferAfter.
	DeferAfter time.Duration
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}

	deferAfter := cfg.DeferAfter
	if deferAfter <= 0 {
		deferAfter = DefaultDeferAfter
	}

	return &Handler{
		ServiceProvider: cfg.ServiceProvider,
		localizer:       cfg.ServiceProvider.Localizer,
		deferAfter:      deferAfter,
	}
}

// reply is what an interaction answers with
type reply struct {
	content    string
	embeds     []*discordgo.MessageEmbed
	components []discordgo.MessageComponent
	ephemeral  bool
	// update replaces the message the pressed component sits on
	update bool
}

// RegisterCommands registers the slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range h.commands() {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
		log.Printf("Registered command: %s", cmd.Name)
	}

	return nil
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.dispatch(s, i)
}

func (h *Handler) dispatch(s interactionSession, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		h.handleAutocomplete(s, i)
	}
}

// handleCommand handles slash command interactions
func (h *Handler) handleCommand(s interactionSession, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != CommandName || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]
	h.answer(s, i, commandAck(sub.Name), func() *reply {
		ctx := context.Background()
		userID := h.ensureUser(ctx, i)

		r, err := h.runCommand(ctx, userID, sub.Name, optionsOf(sub.Options))
		if err != nil {
			logFailure("/"+CommandName+" "+sub.Name, userID, err)
			return h.errorReply(err)
		}
		return r
	})
}

// handleComponent handles button interactions
func (h *Handler) handleComponent(s interactionSession, i *discordgo.InteractionCreate) {
	id, ok := ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	h.answer(s, i, componentAck(id), func() *reply {
		ctx := context.Background()
		userID := h.ensureUser(ctx, i)

		r, err := h.runComponent(ctx, userID, id)
		if err != nil {
			logFailure("Button "+id.String(), userID, err)
			return h.errorReply(err)
		}
		return r
	})
}

// commandAck announces damage to the table and keeps everything else private
func commandAck(subcommand string) ack {
	return ack{ephemeral: subcommand != SubcommandDamage}
}

// componentAck matches the deferral to what the button replies with. Confirm
// and cancel buttons replace their own prompt.
func componentAck(id CustomID) ack {
	switch id.Action {
	case ActionDeleteConfirm, ActionKeep, ActionEndConfirm:
		return ack{ephemeral: true, update: true}
	default:
		return ack{ephemeral: true}
	}
}

// handleAutocomplete suggests spells while the user types
func (h *Handler) handleAutocomplete(s interactionSession, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != CommandName || len(data.Options) == 0 {
		return
	}

	choices := h.spellChoices(context.Background(), optionsOf(data.Options[0].Options))
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		log.Printf("[DISCORD] Failed to send autocomplete: %v", err)
	}
}

// interactionUser returns the invoking user for guild and DM interactions
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// ensureUser records users the first time they interact. GMs are seeded at startup.
func (h *Handler) ensureUser(ctx context.Context, i *discordgo.InteractionCreate) string {
	user := interactionUser(i)
	if user == nil {
		return ""
	}

	docs := h.ServiceProvider.DocumentService
	_, err := docs.GetUser(ctx, user.ID)
	if err == nil {
		return user.ID
	}
	if !dnderr.IsNotFound(err) {
		log.Printf("[DISCORD] Failed to load user %s: %v", user.ID, err)
		return user.ID
	}

	if err := docs.UpsertUser(ctx, &entities.User{ID: user.ID, Name: user.Username}); err != nil {
		log.Printf("[DISCORD] Failed to record user %s: %v", user.ID, err)
	}
	return user.ID
}

// logFailure logs a failed interaction with the error code and metadata
func logFailure(what, userID string, err error) {
	if meta := dnderr.GetMeta(err); len(meta) > 0 {
		log.Printf("[DISCORD] %s failed for %s [%s] %v: %v", what, userID, dnderr.GetCode(err), meta, err)
		return
	}
	log.Printf("[DISCORD] %s failed for %s [%s]: %v", what, userID, dnderr.GetCode(err), err)
}

// errorReply turns a failure into the ephemeral text the user sees
func (h *Handler) errorReply(err error) *reply {
	severity, key := dnderr.GetSeverity(err)

	var content string
	switch {
	case severity == dnderr.SeverityWarn:
		content = "⚠️ " + h.localizer.Localize(key)
	case severity == dnderr.SeverityError:
		content = "❌ " + h.localizer.Localize(key)
	case dnderr.IsNotFound(err), dnderr.IsInvalidArgument(err), dnderr.IsValidation(err),
		dnderr.IsAlreadyExists(err), dnderr.Is(err, dnderr.CodePermissionDenied):
		content = "❌ " + userMessage(err)
	default:
		content = "❌ " + h.localizer.Localize("CN.DISCORD.ERROR")
	}

	return &reply{content: content, ephemeral: true}
}
