package concentration

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
)

func (s *service) RegisterHooks(bus *events.Bus) {
	bus.SubscribeFunc(events.EventTypePreCreateChatMessage, "concentration.cast", events.PriorityLifecycle, s.handleCastMessage)
}

// handleCastMessage starts concentration when a concentration item is used.
// It never vetoes the message.
func (s *service) handleCastMessage(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.PreCreateChatMessageEvent)
	if !ok || evt.Message == nil || evt.Message.Kind != entities.MessageKindCast || evt.Message.Cast == nil {
		return nil
	}

	req, err := s.castRequest(ctx, evt.Message, evt.GetUserID())
	if err != nil {
		log.Printf("[CONCENTRATION] Could not read cast message: %v", err)
		return nil
	}
	if req == nil {
		return nil
	}

	if _, err := s.StartConcentration(ctx, req); err != nil {
		log.Printf("[CONCENTRATION] Failed to start concentration on %s: %v", req.Item.Name, err)
	}
	return nil
}

// castRequest turns a cast announcement into a start request. It returns nil
// when the announcement does not start concentration.
func (s *service) castRequest(ctx context.Context, message *entities.Message, userID string) (*StartRequest, error) {
	cast := message.Cast

	caster, err := s.castActor(ctx, cast)
	if err != nil || caster == nil {
		return nil, err
	}

	item := caster.GetItem(cast.ItemID)
	if item == nil && cast.ItemData != nil {
		item = cast.ItemData.Snapshot()
		item.ActorID = caster.ID
	}
	if item == nil {
		log.Printf("[CONCENTRATION] Item %s not found on %s", cast.ItemID, caster.Name)
		return nil, nil
	}
	if !item.Concentration {
		return nil, nil
	}

	level, err := castLevel(cast.SpellLevel)
	if err != nil {
		log.Printf("[CONCENTRATION] Cast of %s has no numeric spell level %q", item.Name, cast.SpellLevel)
		return nil, nil
	}

	return &StartRequest{
		Item:      item,
		Actor:     caster.UUID(),
		CastLevel: level,
		Message:   message.Metadata(),
		UserID:    userID,
	}, nil
}

// castLevel reads the level of a cast. Features and items without a level
// cast at 0, which falls back to the item's own level.
func castLevel(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// castActor prefers the token of the cast. An actor id alone is only trusted
// for world actors, since unlinked token actors need their token.
func (s *service) castActor(ctx context.Context, cast *entities.CastData) (*entities.Actor, error) {
	if cast.TokenID != "" {
		token, err := s.documentSvc.ResolveToken(ctx, entities.Address(cast.TokenID))
		if dnderr.IsNotFound(err) || dnderr.IsInvalidArgument(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return entities.ResolveActor(token), nil
	}

	if cast.ActorID == "" {
		return nil, nil
	}

	actor, err := s.documentSvc.ResolveActor(ctx, entities.ActorAddress(cast.ActorID))
	if dnderr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if actor.Token != nil {
		log.Printf("[CONCENTRATION] Cast by unlinked actor %s has no token", actor.Name)
		return nil, nil
	}
	return actor, nil
}
