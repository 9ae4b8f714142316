package notifier

import (
	"context"
	"log"
	"slices"

	"github.com/KirkDiggler/concentration-bot/internal/cards"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/services/documents"
	"github.com/KirkDiggler/concentration-bot/internal/services/saves"
)

// DeleteResult is the outcome of the delete concentration button
type DeleteResult struct {
	Effect *entities.Effect
	// Prompt is set when the user still has to confirm
	Prompt  *entities.Card
	Deleted bool
}

// Service announces concentration changes and handles the save request buttons
type Service interface {
	// RegisterHooks subscribes the gain and loss notices
	RegisterHooks(bus *events.Bus)

	// DeleteConcentration removes the effect a save request points at. Without
	// skipConfirm it only returns the confirmation prompt.
	DeleteConcentration(ctx context.Context, messageID, userID string, skipConfirm bool) (*DeleteResult, error)

	// MakeSave rolls the save a save request asks for
	MakeSave(ctx context.Context, messageID, userID string) (*saves.SaveResult, error)
}

// ServiceConfig holds configuration for the notifier service
type ServiceConfig struct {
	DocumentSvc documents.Service
	SavesSvc    saves.Service
	Cards       *cards.Builder
}

type service struct {
	documentSvc documents.Service
	savesSvc    saves.Service
	cards       *cards.Builder
}

// NewService creates a new notifier service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.DocumentSvc == nil {
		panic("document service is required")
	}
	if cfg.SavesSvc == nil {
		panic("saves service is required")
	}
	if cfg.Cards == nil {
		panic("card builder is required")
	}

	return &service{
		documentSvc: cfg.DocumentSvc,
		savesSvc:    cfg.SavesSvc,
		cards:       cfg.Cards,
	}
}

func (s *service) RegisterHooks(bus *events.Bus) {
	bus.SubscribeFunc(events.EventTypePreCreateEffect, "notifier.gain", events.PriorityNotify, s.onCreateEffect)
	bus.SubscribeFunc(events.EventTypePreDeleteEffect, "notifier.loss", events.PriorityNotify, s.onDeleteEffect)
}

func (s *service) onCreateEffect(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.PreCreateEffectEvent)
	if !ok || !evt.Effect.IsConcentration() || evt.Actor == nil {
		return nil
	}

	message := &entities.Message{
		Kind:    entities.MessageKindGain,
		Speaker: entities.Speaker{Alias: evt.Actor.Name, ActorID: evt.Actor.ID},
		Card:    s.cards.ConcentrationGained(evt.Actor.Name, evt.Effect),
		Flags:   entities.MessageFlags{ActorUUID: evt.Actor.UUID(), CanPopOut: true},
	}
	if _, err := s.documentSvc.CreateMessage(ctx, message, evt.GetUserID()); err != nil {
		log.Printf("[NOTIFIER] Failed to announce concentration of %s on %s: %v", evt.Actor.Name, evt.Effect.ItemName(), err)
	}
	return nil
}

func (s *service) onDeleteEffect(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.PreDeleteEffectEvent)
	if !ok || !evt.Effect.IsConcentration() || evt.Actor == nil {
		return nil
	}

	message := &entities.Message{
		Kind:    entities.MessageKindLoss,
		Speaker: entities.Speaker{Alias: s.cards.Speaker()},
		Card:    s.cards.ConcentrationLost(evt.Actor.Name, evt.Effect),
		Flags:   entities.MessageFlags{ActorUUID: evt.Actor.UUID(), CanPopOut: true},
	}
	if _, err := s.documentSvc.CreateMessage(ctx, message, evt.GetUserID()); err != nil {
		log.Printf("[NOTIFIER] Failed to announce lost concentration of %s on %s: %v", evt.Actor.Name, evt.Effect.ItemName(), err)
	}
	return nil
}

// saveRequest loads a save request the user is allowed to act on
func (s *service) saveRequest(ctx context.Context, messageID, userID string) (*entities.Message, error) {
	message, err := s.documentSvc.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.Kind != entities.MessageKindSaveRequest {
		return nil, dnderr.InvalidArgumentf("message %s is not a save request", messageID)
	}

	if message.IsWhisper() && !slices.Contains(message.Whisper, userID) {
		user, err := s.documentSvc.GetUser(ctx, userID)
		if err != nil || !user.IsGM {
			return nil, dnderr.New(dnderr.CodePermissionDenied, "only the owners of the actor can use this button").
				WithMeta("user_id", userID)
		}
	}
	return message, nil
}

func (s *service) DeleteConcentration(ctx context.Context, messageID, userID string, skipConfirm bool) (*DeleteResult, error) {
	message, err := s.saveRequest(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	effect, err := s.documentSvc.ResolveEffect(ctx, message.Flags.EffectUUID)
	if err != nil {
		return nil, err
	}

	if !skipConfirm {
		return &DeleteResult{
			Effect: effect,
			Prompt: s.cards.DeletePrompt(effect.ItemName()),
		}, nil
	}

	deleted, err := s.documentSvc.DeleteEffect(ctx, effect.UUID(), userID)
	if err != nil {
		return nil, err
	}
	log.Printf("[NOTIFIER] %s removed concentration on %s", userID, deleted.ItemName())
	return &DeleteResult{Effect: deleted, Deleted: true}, nil
}

func (s *service) MakeSave(ctx context.Context, messageID, userID string) (*saves.SaveResult, error) {
	message, err := s.saveRequest(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	actor, err := s.documentSvc.ResolveActor(ctx, message.Flags.ActorUUID)
	if err != nil {
		return nil, err
	}

	return s.savesSvc.RollConcentrationSave(ctx, actor, &saves.RollOptions{
		DC:     message.Flags.SaveDC,
		UserID: userID,
	})
}
