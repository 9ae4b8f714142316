package preferences

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/config"
	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/services/documents"
)

// DefaultConcentrationIcon is used when no custom icon is configured
const DefaultConcentrationIcon = "modules/concentrationnotifier/images/concentration.webp"

// WorldSettings are the world-level concentration settings
type WorldSettings struct {
	ConcentrationIcon   string // Custom icon, empty for the default
	UseItemImage        bool
	PrependEffectLabels bool
	Locale              string
}

// Service exposes world settings and the concentration actor flags
type Service interface {
	World() WorldSettings

	// RegisterActorFlags adds the six concentration flags to the registry.
	// Calling it again changes nothing.
	RegisterActorFlags()

	// RegisterHooks registers the flags when the ready hook fires
	RegisterHooks(bus *events.Bus)

	// Definitions lists the registered actor flags
	Definitions() []FlagDefinition

	// SetActorFlag validates and stores an actor flag. An empty value removes it.
	SetActorFlag(ctx context.Context, actorID, name, value, userID string) (*entities.Actor, error)

	// ConcentrationFlags reads an actor's flags, clamping bad values
	ConcentrationFlags(actor *entities.Actor) Flags

	// ConcentrationAbility returns the ability key and its display name
	ConcentrationAbility(actor *entities.Actor) (entities.Ability, string)
}

// ServiceConfig holds configuration for the preferences service
type ServiceConfig struct {
	World       config.WorldConfig
	Registry    *Registry
	Localizer   i18n.Localizer
	DocumentSvc documents.Service
}

type service struct {
	world       WorldSettings
	registry    *Registry
	localizer   i18n.Localizer
	documentSvc documents.Service
}

// NewService creates a new preferences service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Localizer == nil {
		panic("localizer is required")
	}
	if cfg.DocumentSvc == nil {
		panic("document service is required")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &service{
		world: WorldSettings{
			ConcentrationIcon:   cfg.World.ConcentrationIcon,
			UseItemImage:        cfg.World.UseItemImage,
			PrependEffectLabels: cfg.World.PrependEffectLabels,
			Locale:              cfg.World.Locale,
		},
		registry:    registry,
		localizer:   cfg.Localizer,
		documentSvc: cfg.DocumentSvc,
	}
}

func (s *service) World() WorldSettings {
	return s.world
}

func (s *service) RegisterActorFlags() {
	section := s.localizer.Localize("CN.NAME.CARD_NAME")

	abilityKeys := make([]string, 0, len(entities.Abilities))
	for _, ability := range entities.Abilities {
		abilityKeys = append(abilityKeys, string(ability))
	}

	defs := []FlagDefinition{
		{Name: FlagBonus, Type: FlagTypeString,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.BONUS.NAME"),
			Hint:  s.localizer.Localize("CN.CHARACTER_FLAGS.BONUS.HINT")},
		{Name: FlagAbility, Type: FlagTypeString,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.ABILITY.NAME"),
			Hint:  s.localizer.Format("CN.CHARACTER_FLAGS.ABILITY.HINT", strings.Join(abilityKeys, ", "))},
		{Name: FlagAdvantage, Type: FlagTypeBool,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.ADVANTAGE.NAME"),
			Hint:  s.localizer.Localize("CN.CHARACTER_FLAGS.ADVANTAGE.HINT")},
		{Name: FlagReliable, Type: FlagTypeBool,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.RELIABLE.NAME"),
			Hint:  s.localizer.Localize("CN.CHARACTER_FLAGS.RELIABLE.HINT")},
		{Name: FlagFloor, Type: FlagTypeNumber,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.FLOOR.NAME"),
			Hint:  s.localizer.Localize("CN.CHARACTER_FLAGS.FLOOR.HINT")},
		{Name: FlagCeiling, Type: FlagTypeNumber,
			Label: s.localizer.Localize("CN.CHARACTER_FLAGS.CEILING.NAME"),
			Hint:  s.localizer.Localize("CN.CHARACTER_FLAGS.CEILING.HINT")},
	}

	added := 0
	for _, def := range defs {
		def.Section = section
		if s.registry.Register(def) {
			added++
		}
	}
	if added > 0 {
		log.Printf("[PREFERENCES] Registered %d actor flags", added)
	}
}

func (s *service) RegisterHooks(bus *events.Bus) {
	bus.SubscribeFunc(events.EventTypeReady, "preferences.register_flags", events.PriorityLifecycle,
		func(context.Context, events.Event) error {
			s.RegisterActorFlags()
			return nil
		})
}

func (s *service) Definitions() []FlagDefinition {
	return s.registry.Definitions()
}

func (s *service) SetActorFlag(ctx context.Context, actorID, name, value, userID string) (*entities.Actor, error) {
	def, ok := s.registry.Lookup(name)
	if !ok {
		return nil, dnderr.InvalidArgumentf("unknown flag %s", name).WithMeta("flag", name)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return s.documentSvc.UpdateActor(ctx, actorID, &entities.ActorPatch{
			Flags: map[string]*string{name: nil},
		}, userID)
	}

	normalized, err := validateFlag(def, value)
	if err != nil {
		return nil, err
	}

	return s.documentSvc.UpdateActor(ctx, actorID, &entities.ActorPatch{
		Flags: map[string]*string{name: &normalized},
	}, userID)
}

func validateFlag(def FlagDefinition, value string) (string, error) {
	switch def.Type {
	case FlagTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", dnderr.Validationf("flag %s expects true or false, got %q", def.Name, value)
		}
		return strconv.FormatBool(b), nil
	case FlagTypeNumber:
		n, err := strconv.Atoi(value)
		if err != nil || n < minFace || n > maxFace {
			return "", dnderr.Validationf("flag %s expects a number from %d to %d, got %q", def.Name, minFace, maxFace, value)
		}
		return strconv.Itoa(n), nil
	}

	switch def.Name {
	case FlagAbility:
		ability := entities.Ability(strings.ToLower(value))
		if !ability.Valid() {
			return "", dnderr.Validationf("flag %s expects an ability key, got %q", def.Name, value)
		}
		return string(ability), nil
	case FlagBonus:
		if _, err := dice.ParseExpression(value); err != nil {
			return "", dnderr.Validationf("flag %s expects a bonus like 2 or 1d4, got %q", def.Name, value)
		}
	}
	return value, nil
}

func (s *service) ConcentrationFlags(actor *entities.Actor) Flags {
	return ReadFlags(actor)
}

func (s *service) ConcentrationAbility(actor *entities.Actor) (entities.Ability, string) {
	ability := ReadFlags(actor).Ability
	return ability, s.localizer.Localize(ability.LocalizationKey())
}
