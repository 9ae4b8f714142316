package concentration

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/effects"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/services/documents"
	"github.com/KirkDiggler/concentration-bot/internal/services/preferences"
)

// Default poll window of WaitForConcentration
const (
	DefaultWaitInterval = 100 * time.Millisecond
	DefaultWaitTimeout  = 10 * time.Second
)

// StartRequest describes a concentration to begin
type StartRequest struct {
	Item *entities.Item

	// Actor is the caster's address. Only used when the item has no owner.
	Actor entities.Address

	// CastLevel defaults to the item's level
	CastLevel int

	// Casting holds extra caller supplied casting fields
	Casting entities.Metadata

	// Message is the context of the announcement that started the concentration
	Message entities.Metadata

	UserID string
}

// Service manages the concentration effect of actors. An actor has at most
// one concentration effect.
type Service interface {
	// IsConcentratingOnItem returns the effect for the item, or nil
	IsConcentratingOnItem(ctx context.Context, actor *entities.Actor, item *entities.Item) (*entities.Effect, error)

	// IsConcentratingOnAnything returns the actor's concentration effect, or nil
	IsConcentratingOnAnything(ctx context.Context, actor *entities.Actor) (*entities.Effect, error)

	// StartConcentration creates the concentration effect for a cast, replacing
	// any other. It returns nothing when the same item at the same level is
	// already concentrated on.
	StartConcentration(ctx context.Context, req *StartRequest) ([]*entities.Effect, error)

	// EndConcentrationOnActor removes every concentration effect of the actor
	EndConcentrationOnActor(ctx context.Context, actor *entities.Actor, userID string) ([]*entities.Effect, error)

	// EndConcentrationOnItem removes the concentration on one item. It warns
	// when there is none.
	EndConcentrationOnItem(ctx context.Context, actor *entities.Actor, item *entities.Item, userID string) ([]*entities.Effect, error)

	// WaitForConcentration polls until the actor concentrates on the item.
	// It reports false when the timeout passes or ctx is done first.
	WaitForConcentration(ctx context.Context, actor *entities.Actor, item *entities.Item) (*entities.Effect, bool)

	// RegisterHooks starts concentration from cast announcements
	RegisterHooks(bus *events.Bus)
}

// ServiceConfig holds configuration for the concentration service
type ServiceConfig struct {
	DocumentSvc    documents.Service
	PreferencesSvc preferences.Service
	Localizer      i18n.Localizer
	WaitInterval   time.Duration
	WaitTimeout    time.Duration
}

type service struct {
	documentSvc    documents.Service
	preferencesSvc preferences.Service
	localizer      i18n.Localizer
	waitInterval   time.Duration
	waitTimeout    time.Duration

	locksMu    sync.Mutex
	actorLocks map[string]*sync.Mutex
}

// NewService creates a new concentration service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.DocumentSvc == nil {
		panic("document service is required")
	}
	if cfg.PreferencesSvc == nil {
		panic("preferences service is required")
	}
	if cfg.Localizer == nil {
		panic("localizer is required")
	}

	svc := &service{
		documentSvc:    cfg.DocumentSvc,
		preferencesSvc: cfg.PreferencesSvc,
		localizer:      cfg.Localizer,
		waitInterval:   cfg.WaitInterval,
		waitTimeout:    cfg.WaitTimeout,
		actorLocks:     make(map[string]*sync.Mutex),
	}
	if svc.waitInterval <= 0 {
		svc.waitInterval = DefaultWaitInterval
	}
	if svc.waitTimeout <= 0 {
		svc.waitTimeout = DefaultWaitTimeout
	}

	return svc
}

func (s *service) lockActor(actorID string) func() {
	s.locksMu.Lock()
	mu, ok := s.actorLocks[actorID]
	if !ok {
		mu = &sync.Mutex{}
		s.actorLocks[actorID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *service) concentrationEffects(ctx context.Context, actor *entities.Actor) ([]*entities.Effect, error) {
	all, err := s.documentSvc.ActorEffects(ctx, actor)
	if err != nil {
		return nil, err
	}

	var out []*entities.Effect
	for _, effect := range all {
		if effect.IsConcentration() {
			out = append(out, effect)
		}
	}
	return out, nil
}

func (s *service) IsConcentratingOnItem(ctx context.Context, actor *entities.Actor, item *entities.Item) (*entities.Effect, error) {
	if actor == nil || item == nil {
		return nil, nil
	}

	list, err := s.concentrationEffects(ctx, actor)
	if err != nil {
		return nil, err
	}

	address := item.UUID()
	for _, effect := range list {
		if effect.Concentration != nil && effect.Concentration.Casting.ItemUUID == address {
			return effect, nil
		}
	}
	return nil, nil
}

func (s *service) IsConcentratingOnAnything(ctx context.Context, actor *entities.Actor) (*entities.Effect, error) {
	if actor == nil {
		return nil, nil
	}

	list, err := s.concentrationEffects(ctx, actor)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *service) resolveCaster(ctx context.Context, req *StartRequest) (*entities.Actor, error) {
	address := req.Actor
	if req.Item.ActorID != "" {
		address = entities.ActorAddress(req.Item.ActorID)
	}
	if address.IsZero() {
		return nil, nil
	}

	actor, err := s.documentSvc.ResolveActor(ctx, address)
	if dnderr.IsNotFound(err) {
		return nil, nil
	}
	return actor, err
}

func (s *service) StartConcentration(ctx context.Context, req *StartRequest) ([]*entities.Effect, error) {
	if req == nil || req.Item == nil {
		return nil, dnderr.InvalidArgument("an item is required to start concentration")
	}

	caster, err := s.resolveCaster(ctx, req)
	if err != nil {
		return nil, err
	}
	if caster == nil {
		log.Printf("[CONCENTRATION] No actor found for %s, not starting concentration", req.Item.Name)
		return nil, nil
	}

	unlock := s.lockActor(caster.ID)
	defer unlock()

	candidate := s.buildCandidate(caster, req)

	existing, err := s.concentrationEffects(ctx, caster)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		current := existing[0].Concentration
		sameItem := current != nil && current.Casting.ItemID == candidate.Concentration.Casting.ItemID
		sameLevel := current != nil && current.Casting.CastLevel == candidate.Concentration.Casting.CastLevel
		if sameItem && sameLevel && len(existing) == 1 {
			log.Printf("[CONCENTRATION] %s is already concentrating on %s at level %d",
				caster.Name, req.Item.Name, candidate.Concentration.Casting.CastLevel)
			return []*entities.Effect{}, nil
		}

		if _, err := s.deleteAll(ctx, caster, existing, req.UserID); err != nil {
			return nil, err
		}
	}

	created, err := s.documentSvc.CreateEffects(ctx, caster, []*entities.Effect{candidate}, req.UserID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to start concentration on %s", req.Item.Name)
	}
	if len(created) > 0 {
		log.Printf("[CONCENTRATION] %s started concentrating on %s (level %d)",
			caster.Name, req.Item.Name, candidate.Concentration.Casting.CastLevel)
	}
	return created, nil
}

func (s *service) buildCandidate(caster *entities.Actor, req *StartRequest) *entities.Effect {
	item := req.Item
	world := s.preferencesSvc.World()

	castLevel := req.CastLevel
	if castLevel == 0 {
		castLevel = item.Level
	}

	origin := caster.UUID()
	if item.ID != "" {
		origin = item.UUID()
	}

	return effects.NewBuilder(s.label(world, item.Name)).
		ForActor(caster.ID).
		WithIcon(icon(world, item)).
		WithOrigin(origin).
		WithDescription(s.localizer.Format("CN.CONVENIENT_DESCRIPTION", item.Name)).
		WithItemDuration(item.Duration).
		WithConcentration(&entities.ConcentrationData{
			ActorID:   caster.ID,
			ActorUUID: caster.UUID(),
			Item:      item.Snapshot(),
			Casting: entities.CastingData{
				ItemID:    item.ID,
				ItemUUID:  item.UUID(),
				BaseLevel: item.Level,
				CastLevel: castLevel,
				Extra:     req.Casting.Clone(),
			},
			Message: req.Message.Clone(),
		}).
		Build()
}

func (s *service) label(world preferences.WorldSettings, itemName string) string {
	if !world.PrependEffectLabels {
		return itemName
	}
	return s.localizer.Localize("CN.NAME.CARD_NAME") + " - " + itemName
}

func icon(world preferences.WorldSettings, item *entities.Item) string {
	if world.UseItemImage && item.Img != "" {
		return item.Img
	}
	if world.ConcentrationIcon != "" {
		return world.ConcentrationIcon
	}
	return preferences.DefaultConcentrationIcon
}

func (s *service) deleteAll(ctx context.Context, actor *entities.Actor, list []*entities.Effect, userID string) ([]*entities.Effect, error) {
	ids := make([]string, 0, len(list))
	for _, effect := range list {
		ids = append(ids, effect.ID)
	}

	deleted, err := s.documentSvc.DeleteEffects(ctx, actor, ids, userID)
	if err != nil {
		return deleted, dnderr.Wrapf(err, "failed to end concentration of %s", actor.Name)
	}
	return deleted, nil
}

func (s *service) EndConcentrationOnActor(ctx context.Context, actor *entities.Actor, userID string) ([]*entities.Effect, error) {
	if actor == nil {
		return []*entities.Effect{}, nil
	}

	unlock := s.lockActor(actor.ID)
	defer unlock()

	list, err := s.concentrationEffects(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []*entities.Effect{}, nil
	}

	return s.deleteAll(ctx, actor, list, userID)
}

func (s *service) EndConcentrationOnItem(ctx context.Context, actor *entities.Actor, item *entities.Item, userID string) ([]*entities.Effect, error) {
	if actor == nil || item == nil {
		return nil, dnderr.InvalidArgument("actor and item are required")
	}

	unlock := s.lockActor(actor.ID)
	defer unlock()

	effect, err := s.IsConcentratingOnItem(ctx, actor, item)
	if err != nil {
		return nil, err
	}
	if effect == nil {
		return nil, dnderr.NotFoundf("%s is not concentrating on %s", actor.Name, item.Name).
			WithMeta("actor_id", actor.ID).
			WithMeta("item_id", item.ID).
			Warn("CN.WARN.MISSING_CONC_ON_ITEM")
	}

	return s.deleteAll(ctx, actor, []*entities.Effect{effect}, userID)
}

func (s *service) WaitForConcentration(ctx context.Context, actor *entities.Actor, item *entities.Item) (*entities.Effect, bool) {
	deadline := time.NewTimer(s.waitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.waitInterval)
	defer ticker.Stop()

	for {
		effect, err := s.IsConcentratingOnItem(ctx, actor, item)
		if err != nil {
			log.Printf("[CONCENTRATION] Failed to check concentration of %s: %v", actor.Name, err)
		}
		if effect != nil {
			return effect, true
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-ticker.C:
		}
	}
}
