package saves

import (
	"context"
	"log"

	"github.com/KirkDiggler/concentration-bot/internal/cards"
	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/services/concentration"
	"github.com/KirkDiggler/concentration-bot/internal/services/documents"
	"github.com/KirkDiggler/concentration-bot/internal/services/preferences"
)

// MinimumDC is the lowest concentration save DC
const MinimumDC = 10

// DCForDamage returns the save DC for the damage taken
func DCForDamage(damage int) int {
	if damage < 0 {
		damage = -damage
	}
	if half := damage / 2; half > MinimumDC {
		return half
	}
	return MinimumDC
}

// RequestOptions controls a save request
type RequestOptions struct {
	DC     int
	Damage int // Zero when the save was not caused by damage

	// UserID is the user the request should come from, if any
	UserID string
	// SessionUserID is the user running the command that asked for the save
	SessionUserID string
}

// RollOptions controls a concentration save roll
type RollOptions struct {
	DC     int // Zero rolls without a target
	UserID string
}

// SaveResult is a rolled concentration save
type SaveResult struct {
	Roll    *dice.RollResult
	DC      int
	Success bool
	Effect  *entities.Effect // Nil when the actor was not concentrating
	Message *entities.Message
}

// Service requests and rolls concentration saves
type Service interface {
	// RequestSavingThrow posts a save prompt to the owners of the actor
	RequestSavingThrow(ctx context.Context, actor *entities.Actor, opts *RequestOptions) (*entities.Message, error)

	// RollConcentrationSave rolls the save with the actor's flags and announces it
	RollConcentrationSave(ctx context.Context, actor *entities.Actor, opts *RollOptions) (*SaveResult, error)
}

// ServiceConfig holds configuration for the saves service
type ServiceConfig struct {
	DocumentSvc      documents.Service
	ConcentrationSvc concentration.Service
	PreferencesSvc   preferences.Service
	Cards            *cards.Builder
	Roller           dice.Roller
}

type service struct {
	documentSvc      documents.Service
	concentrationSvc concentration.Service
	preferencesSvc   preferences.Service
	cards            *cards.Builder
	roller           dice.Roller
}

// NewService creates a new saves service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.DocumentSvc == nil {
		panic("document service is required")
	}
	if cfg.ConcentrationSvc == nil {
		panic("concentration service is required")
	}
	if cfg.PreferencesSvc == nil {
		panic("preferences service is required")
	}
	if cfg.Cards == nil {
		panic("card builder is required")
	}

	svc := &service{
		documentSvc:      cfg.DocumentSvc,
		concentrationSvc: cfg.ConcentrationSvc,
		preferencesSvc:   cfg.PreferencesSvc,
		cards:            cfg.Cards,
		roller:           cfg.Roller,
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}

	return svc
}

func (s *service) RequestSavingThrow(ctx context.Context, actor *entities.Actor, opts *RequestOptions) (*entities.Message, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if actor == nil {
		return nil, dnderr.InvalidArgument("no actor to request a saving throw from").
			Warn("CN.WARN.MISSING_ACTOR")
	}

	effect, err := s.concentrationSvc.IsConcentratingOnAnything(ctx, actor)
	if err != nil {
		return nil, err
	}
	if effect == nil {
		return nil, dnderr.NotConcentratingf("%s is not concentrating on anything", actor.Name).
			WithMeta("actor_id", actor.ID).
			Fail("CN.WARN.MISSING_CONC")
	}

	dc := opts.DC
	if dc < MinimumDC {
		dc = MinimumDC
	}
	_, abilityName := s.preferencesSvc.ConcentrationAbility(actor)

	owners, err := s.knownOwners(ctx, actor)
	if err != nil {
		return nil, err
	}
	userID := selectUser(owners, opts)

	message := &entities.Message{
		Kind:    entities.MessageKindSaveRequest,
		UserID:  userID,
		Speaker: entities.Speaker{Alias: s.cards.Speaker(), ActorID: actor.ID},
		Whisper: userIDs(owners),
		Card: s.cards.SaveRequest(cards.SaveRequestInput{
			ActorName:   actor.Name,
			ItemName:    effect.ItemName(),
			AbilityName: abilityName,
			Icon:        effect.Icon,
			Damage:      opts.Damage,
			DC:          dc,
		}),
		Flags: entities.MessageFlags{
			EffectUUID: effect.UUID(),
			ActorUUID:  actor.UUID(),
			SaveDC:     dc,
			CanPopOut:  true,
		},
	}

	created, err := s.documentSvc.CreateMessage(ctx, message, userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[SAVES] Requested DC %d concentration save from %s for %s", dc, actor.Name, effect.ItemName())
	return created, nil
}

// knownOwners returns the owners of the actor that are known users
func (s *service) knownOwners(ctx context.Context, actor *entities.Actor) ([]*entities.User, error) {
	var owners []*entities.User
	for _, id := range actor.Owners() {
		user, err := s.documentSvc.GetUser(ctx, id)
		if dnderr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to load owner %s of %s", id, actor.Name)
		}
		owners = append(owners, user)
	}
	return owners, nil
}

func userIDs(users []*entities.User) []string {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids
}

// selectUser picks who the request is posted as: the given user if they are a
// player owner, else the first player owner, else the given user, else the
// session user.
func selectUser(owners []*entities.User, opts *RequestOptions) string {
	var players []string
	for _, user := range owners {
		if !user.IsGM {
			players = append(players, user.ID)
		}
	}

	for _, id := range players {
		if id == opts.UserID && id != "" {
			return id
		}
	}
	if len(players) > 0 {
		return players[0]
	}
	if opts.UserID != "" {
		return opts.UserID
	}
	return opts.SessionUserID
}

func (s *service) RollConcentrationSave(ctx context.Context, actor *entities.Actor, opts *RollOptions) (*SaveResult, error) {
	if opts == nil {
		opts = &RollOptions{}
	}
	if actor == nil {
		return nil, dnderr.InvalidArgument("no actor to roll a saving throw for").
			Warn("CN.WARN.MISSING_ACTOR")
	}

	flags := s.preferencesSvc.ConcentrationFlags(actor)
	ability, abilityName := s.preferencesSvc.ConcentrationAbility(actor)

	roll, err := s.rollSave(actor, ability, flags)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll concentration save for %s", actor.Name)
	}

	ApplyRollAdjustment(roll, flags)

	effect, err := s.concentrationSvc.IsConcentratingOnAnything(ctx, actor)
	if err != nil {
		return nil, err
	}
	itemName := ""
	if effect != nil {
		itemName = effect.ItemName()
	}

	result := &SaveResult{
		Roll:    roll,
		DC:      opts.DC,
		Success: opts.DC > 0 && roll.Total >= opts.DC,
		Effect:  effect,
	}

	message := &entities.Message{
		Kind:    entities.MessageKindSaveResult,
		UserID:  opts.UserID,
		Speaker: entities.Speaker{Alias: actor.Name, ActorID: actor.ID},
		Card: s.cards.SaveResult(cards.SaveResultInput{
			ActorName:   actor.Name,
			ItemName:    itemName,
			AbilityName: abilityName,
			Roll:        roll,
			DC:          opts.DC,
		}),
		Flags: entities.MessageFlags{ActorUUID: actor.UUID(), SaveDC: opts.DC},
		Roll:  roll,
	}
	if effect != nil {
		message.Flags.EffectUUID = effect.UUID()
	}

	created, err := s.documentSvc.CreateMessage(ctx, message, opts.UserID)
	if err != nil {
		return nil, err
	}
	result.Message = created

	log.Printf("[SAVES] %s rolled %d (%s) against DC %d", actor.Name, roll.Total, roll.Formula(), opts.DC)
	return result, nil
}

// rollSave rolls the d20 with the save bonus, the flag bonus and reliable talent
func (s *service) rollSave(actor *entities.Actor, ability entities.Ability, flags preferences.Flags) (*dice.RollResult, error) {
	bonus := actor.SaveBonus(ability)

	var roll *dice.RollResult
	var err error
	if flags.Advantage {
		roll, err = s.roller.RollWithAdvantage(20, bonus)
	} else {
		roll, err = s.roller.Roll(1, 20, bonus)
	}
	if err != nil {
		return nil, err
	}

	if flags.Bonus != "" {
		extra, err := dice.RollExpression(s.roller, flags.Bonus)
		if err != nil {
			return nil, err
		}
		roll.AddPart(dice.Part{Formula: flags.Bonus, Total: extra.Total})
	}

	if flags.Reliable {
		applyReliable(roll)
	}

	markCritAndFumble(roll)
	return roll, nil
}
