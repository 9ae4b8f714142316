package documents

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/actors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/effects"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/messages"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/tokens"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/users"
	"github.com/KirkDiggler/concentration-bot/internal/uuid"
)

// Publisher delivers a stored message to the people allowed to see it
type Publisher interface {
	Publish(ctx context.Context, message *entities.Message) error
}

// Service is the document layer every other service reads and writes through.
// Writes fire the lifecycle hooks on the event bus.
type Service interface {
	// CreateEffects creates effects on an actor. Effects whose pre-create hook
	// was cancelled are skipped.
	CreateEffects(ctx context.Context, actor *entities.Actor, effects []*entities.Effect, userID string) ([]*entities.Effect, error)

	// DeleteEffects removes effects from an actor and returns the removed ones
	DeleteEffects(ctx context.Context, actor *entities.Actor, effectIDs []string, userID string) ([]*entities.Effect, error)

	// DeleteEffect resolves an effect address and removes it
	DeleteEffect(ctx context.Context, address entities.Address, userID string) (*entities.Effect, error)

	// CreateMessage stores a message and publishes it
	CreateMessage(ctx context.Context, message *entities.Message, userID string) (*entities.Message, error)

	// UpdateActor applies a patch to an actor. The pre-update and update hooks
	// receive the same operation.
	UpdateActor(ctx context.Context, actorID string, patch *entities.ActorPatch, userID string) (*entities.Actor, error)

	// ResolveActor returns the actor behind an actor, token or token actor address
	ResolveActor(ctx context.Context, address entities.Address) (*entities.Actor, error)

	// ResolveToken loads a token and the actor it stands for
	ResolveToken(ctx context.Context, address entities.Address) (*entities.Token, error)

	// ResolveEffect loads an effect from its address
	ResolveEffect(ctx context.Context, address entities.Address) (*entities.Effect, error)

	// FindActor looks an actor up by id, then by name
	FindActor(ctx context.Context, idOrName string) (*entities.Actor, error)

	GetMessage(ctx context.Context, id string) (*entities.Message, error)

	// ActorEffects lists the effects embedded on an actor
	ActorEffects(ctx context.Context, actor *entities.Actor) ([]*entities.Effect, error)

	// CreateActor stores a new world actor, assigning an id when it has none
	CreateActor(ctx context.Context, actor *entities.Actor) (*entities.Actor, error)

	GetUser(ctx context.Context, id string) (*entities.User, error)

	// UpsertUser creates or replaces a user
	UpsertUser(ctx context.Context, user *entities.User) error

	// Ready fires the ready hook. Only the first call has any effect.
	Ready(ctx context.Context) error

	// SetPublisher sets where created messages are delivered
	SetPublisher(publisher Publisher)
}

// ServiceConfig holds configuration for the document service
type ServiceConfig struct {
	Bus           *events.Bus
	ActorRepo     actors.Repository
	TokenRepo     tokens.Repository
	EffectRepo    effects.Repository
	MessageRepo   messages.Repository
	UserRepo      users.Repository
	UUIDGenerator uuid.Generator
	Publisher     Publisher // Optional
}

type service struct {
	bus           *events.Bus
	actorRepo     actors.Repository
	tokenRepo     tokens.Repository
	effectRepo    effects.Repository
	messageRepo   messages.Repository
	userRepo      users.Repository
	uuidGenerator uuid.Generator

	publisherMu sync.RWMutex
	publisher   Publisher

	readyOnce sync.Once

	locksMu    sync.Mutex
	actorLocks map[string]*sync.Mutex
}

// NewService creates a new document service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Bus == nil {
		panic("event bus is required")
	}
	if cfg.ActorRepo == nil {
		panic("actor repository is required")
	}
	if cfg.TokenRepo == nil {
		panic("token repository is required")
	}
	if cfg.EffectRepo == nil {
		panic("effect repository is required")
	}
	if cfg.MessageRepo == nil {
		panic("message repository is required")
	}
	if cfg.UserRepo == nil {
		panic("user repository is required")
	}

	svc := &service{
		bus:           cfg.Bus,
		actorRepo:     cfg.ActorRepo,
		tokenRepo:     cfg.TokenRepo,
		effectRepo:    cfg.EffectRepo,
		messageRepo:   cfg.MessageRepo,
		userRepo:      cfg.UserRepo,
		uuidGenerator: cfg.UUIDGenerator,
		publisher:     cfg.Publisher,
		actorLocks:    make(map[string]*sync.Mutex),
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return svc
}

func (s *service) SetPublisher(publisher Publisher) {
	s.publisherMu.Lock()
	defer s.publisherMu.Unlock()
	s.publisher = publisher
}

func (s *service) CreateEffects(ctx context.Context, actor *entities.Actor, list []*entities.Effect, userID string) ([]*entities.Effect, error) {
	if actor == nil {
		return nil, dnderr.InvalidArgument("actor is required")
	}

	created := make([]*entities.Effect, 0, len(list))
	for _, candidate := range list {
		if candidate == nil {
			continue
		}
		effect := candidate.Clone()
		effect.ActorID = actor.ID
		if effect.ID == "" {
			effect.ID = s.uuidGenerator.New()
		}

		event := &events.PreCreateEffectEvent{
			BaseEvent: events.BaseEvent{Type: events.EventTypePreCreateEffect, UserID: userID},
			Actor:     actor,
			Effect:    effect,
		}
		if err := s.bus.Emit(ctx, event); err != nil {
			return created, dnderr.Wrapf(err, "pre-create hook failed for effect %s", effect.Label)
		}
		if event.IsCancelled() {
			log.Printf("[DOCUMENTS] Creation of effect %s on %s was cancelled", effect.Label, actor.Name)
			continue
		}

		if err := s.effectRepo.Create(ctx, effect); err != nil {
			return created, dnderr.Wrapf(err, "failed to create effect %s on %s", effect.Label, actor.Name)
		}
		log.Printf("[DOCUMENTS] Created effect %s (%s) on %s", effect.Label, effect.ID, actor.Name)
		created = append(created, effect)
	}

	return created, nil
}

func (s *service) DeleteEffects(ctx context.Context, actor *entities.Actor, effectIDs []string, userID string) ([]*entities.Effect, error) {
	if actor == nil {
		return nil, dnderr.InvalidArgument("actor is required")
	}

	deleted := make([]*entities.Effect, 0, len(effectIDs))
	for _, id := range effectIDs {
		effect, err := s.effectRepo.Get(ctx, actor.ID, id)
		if dnderr.IsNotFound(err) {
			log.Printf("[DOCUMENTS] Effect %s is already gone from %s", id, actor.Name)
			continue
		}
		if err != nil {
			return deleted, err
		}

		event := &events.PreDeleteEffectEvent{
			BaseEvent: events.BaseEvent{Type: events.EventTypePreDeleteEffect, UserID: userID},
			Actor:     actor,
			Effect:    effect,
		}
		if err := s.bus.Emit(ctx, event); err != nil {
			return deleted, dnderr.Wrapf(err, "pre-delete hook failed for effect %s", effect.Label)
		}
		if event.IsCancelled() {
			log.Printf("[DOCUMENTS] Deletion of effect %s on %s was cancelled", effect.Label, actor.Name)
			continue
		}

		if err := s.effectRepo.Delete(ctx, actor.ID, id); err != nil {
			if dnderr.IsNotFound(err) {
				continue
			}
			return deleted, dnderr.Wrapf(err, "failed to delete effect %s from %s", effect.Label, actor.Name)
		}
		log.Printf("[DOCUMENTS] Deleted effect %s (%s) from %s", effect.Label, effect.ID, actor.Name)
		deleted = append(deleted, effect)
	}

	return deleted, nil
}

func (s *service) DeleteEffect(ctx context.Context, address entities.Address, userID string) (*entities.Effect, error) {
	effect, err := s.ResolveEffect(ctx, address)
	if err != nil {
		return nil, err
	}

	actor, err := s.actorRepo.Get(ctx, effect.ActorID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.DeleteEffects(ctx, actor, []string{effect.ID}, userID)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, dnderr.New(dnderr.CodeCancelled, "effect was not deleted").
			WithMeta("effect_uuid", string(address))
	}
	return deleted[0], nil
}

func (s *service) CreateMessage(ctx context.Context, message *entities.Message, userID string) (*entities.Message, error) {
	if message == nil {
		return nil, dnderr.InvalidArgument("message is required")
	}

	stored := *message
	if stored.ID == "" {
		stored.ID = s.uuidGenerator.New()
	}
	if stored.UserID == "" {
		stored.UserID = userID
	}

	event := &events.PreCreateChatMessageEvent{
		BaseEvent: events.BaseEvent{Type: events.EventTypePreCreateChatMessage, UserID: userID},
		Message:   &stored,
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		return nil, dnderr.Wrap(err, "pre-create hook failed for message")
	}
	if event.IsCancelled() {
		return nil, dnderr.New(dnderr.CodeCancelled, "message creation was cancelled")
	}

	if err := s.messageRepo.Create(ctx, &stored); err != nil {
		return nil, dnderr.Wrap(err, "failed to create message")
	}

	s.publisherMu.RLock()
	publisher := s.publisher
	s.publisherMu.RUnlock()

	if publisher != nil {
		if err := publisher.Publish(ctx, &stored); err != nil {
			// The message is stored; buttons still work once it shows up
			log.Printf("[DOCUMENTS] Failed to publish message %s: %v", stored.ID, err)
		}
	}

	return &stored, nil
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

func (s *service) UpdateActor(ctx context.Context, actorID string, patch *entities.ActorPatch, userID string) (*entities.Actor, error) {
	if patch == nil {
		return nil, dnderr.InvalidArgument("patch is required")
	}

	op := &events.UpdateOperation{
		ID:      s.uuidGenerator.New(),
		ActorID: actorID,
		UserID:  userID,
		Patch:   patch,
	}

	unlock := s.lockActor(actorID)
	actor, err := s.actorRepo.Get(ctx, actorID)
	if err != nil {
		unlock()
		return nil, err
	}

	pre := &events.PreUpdateActorEvent{
		BaseEvent: events.BaseEvent{Type: events.EventTypePreUpdateActor, UserID: userID},
		Actor:     actor.Clone(),
		Operation: op,
	}
	if err := s.bus.Emit(ctx, pre); err != nil {
		unlock()
		return nil, dnderr.Wrapf(err, "pre-update hook failed for %s", actor.Name)
	}
	if pre.IsCancelled() {
		unlock()
		return nil, dnderr.Newf(dnderr.CodeCancelled, "update of %s was cancelled", actor.Name)
	}

	patch.Apply(actor)
	if err := s.actorRepo.Update(ctx, actor); err != nil {
		unlock()
		return nil, dnderr.Wrapf(err, "failed to update %s", actor.Name)
	}
	unlock()

	// Every observer sees the update, the issuing user first
	for _, observer := range observers(userID, actor) {
		post := &events.UpdateActorEvent{
			BaseEvent: events.BaseEvent{Type: events.EventTypeUpdateActor, UserID: observer},
			Actor:     actor.Clone(),
			Operation: op,
		}
		if err := s.bus.Emit(ctx, post); err != nil {
			return actor, dnderr.Wrapf(err, "update hook failed for %s", actor.Name)
		}
	}

	return actor, nil
}

func observers(userID string, actor *entities.Actor) []string {
	result := []string{userID}
	for _, owner := range actor.Owners() {
		if owner != userID {
			result = append(result, owner)
		}
	}
	return result
}

func (s *service) ResolveActor(ctx context.Context, address entities.Address) (*entities.Actor, error) {
	if address.IsZero() {
		return nil, dnderr.InvalidArgument("address is required")
	}

	if actorID, ok := address.Find(entities.DocumentActor); ok {
		return s.actorRepo.Get(ctx, actorID)
	}

	if _, ok := address.Find(entities.DocumentToken); ok {
		token, err := s.ResolveToken(ctx, address)
		if err != nil {
			return nil, err
		}
		if actor := entities.ResolveActor(token); actor != nil {
			return actor, nil
		}
		return nil, dnderr.NotFoundf("token %s has no actor", address)
	}

	return nil, dnderr.InvalidArgumentf("address %s does not name an actor", address)
}

func (s *service) ResolveToken(ctx context.Context, address entities.Address) (*entities.Token, error) {
	sceneID, okScene := address.Find(entities.DocumentScene)
	tokenID, okToken := address.Find(entities.DocumentToken)
	if !okScene || !okToken {
		return nil, dnderr.InvalidArgumentf("address %s does not name a token", address)
	}

	token, err := s.tokenRepo.Get(ctx, sceneID, tokenID)
	if err != nil {
		return nil, err
	}

	actor, err := s.actorRepo.Get(ctx, token.ActorID)
	if err != nil && !dnderr.IsNotFound(err) {
		return nil, err
	}
	token.Actor = actor
	return token, nil
}

func (s *service) ResolveEffect(ctx context.Context, address entities.Address) (*entities.Effect, error) {
	actorID, okActor := address.Find(entities.DocumentActor)
	effectID, okEffect := address.Find(entities.DocumentEffect)
	if !okActor || !okEffect {
		return nil, dnderr.InvalidArgumentf("address %s does not name an effect", address)
	}
	return s.effectRepo.Get(ctx, actorID, effectID)
}

func (s *service) FindActor(ctx context.Context, idOrName string) (*entities.Actor, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, dnderr.InvalidArgument("actor id or name is required")
	}

	actor, err := s.actorRepo.Get(ctx, idOrName)
	if err == nil {
		return actor, nil
	}
	if !dnderr.IsNotFound(err) {
		return nil, err
	}
	return s.actorRepo.GetByName(ctx, idOrName)
}

func (s *service) GetMessage(ctx context.Context, id string) (*entities.Message, error) {
	return s.messageRepo.Get(ctx, id)
}

func (s *service) ActorEffects(ctx context.Context, actor *entities.Actor) ([]*entities.Effect, error) {
	if actor == nil {
		return nil, dnderr.InvalidArgument("actor is required")
	}
	return s.effectRepo.ListByActor(ctx, actor.ID)
}

func (s *service) CreateActor(ctx context.Context, actor *entities.Actor) (*entities.Actor, error) {
	if actor == nil || strings.TrimSpace(actor.Name) == "" {
		return nil, dnderr.InvalidArgument("actor name is required")
	}

	stored := actor.Clone()
	if stored.ID == "" {
		stored.ID = s.uuidGenerator.New()
	}
	for _, item := range stored.Items {
		item.ActorID = stored.ID
	}

	if err := s.actorRepo.Create(ctx, stored); err != nil {
		return nil, dnderr.Wrapf(err, "failed to create actor %s", stored.Name)
	}
	log.Printf("[DOCUMENTS] Created actor %s (%s)", stored.Name, stored.ID)
	return stored, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*entities.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *service) UpsertUser(ctx context.Context, user *entities.User) error {
	if user == nil || user.ID == "" {
		return dnderr.InvalidArgument("user id is required")
	}
	return s.userRepo.Upsert(ctx, user)
}

func (s *service) Ready(ctx context.Context) error {
	var err error
	s.readyOnce.Do(func() {
		log.Printf("[DOCUMENTS] Ready")
		err = s.bus.Emit(ctx, &events.ReadyEvent{
			BaseEvent: events.BaseEvent{Type: events.EventTypeReady},
		})
		if err != nil {
			err = dnderr.WrapWithCode(err, dnderr.CodeInternal, "ready hook failed")
		}
	})
	return err
}
