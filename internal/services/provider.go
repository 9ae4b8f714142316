package services

import (
	"github.com/KirkDiggler/concentration-bot/internal/cards"
	"github.com/KirkDiggler/concentration-bot/internal/clients/dnd5e"
	"github.com/KirkDiggler/concentration-bot/internal/config"
	"github.com/KirkDiggler/concentration-bot/internal/dice"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/i18n"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/actors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/effects"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/messages"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/tokens"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/users"
	concentrationService "github.com/KirkDiggler/concentration-bot/internal/services/concentration"
	damageService "github.com/KirkDiggler/concentration-bot/internal/services/damage"
	documentService "github.com/KirkDiggler/concentration-bot/internal/services/documents"
	notifierService "github.com/KirkDiggler/concentration-bot/internal/services/notifier"
	preferencesService "github.com/KirkDiggler/concentration-bot/internal/services/preferences"
	savesService "github.com/KirkDiggler/concentration-bot/internal/services/saves"
	"github.com/KirkDiggler/concentration-bot/internal/uuid"
	"github.com/redis/go-redis/v9"
)

// Provider holds all service instances
type Provider struct {
	Bus                  *events.Bus
	Localizer            i18n.Localizer
	Cards                *cards.Builder
	DNDClient            dnd5e.Client
	DocumentService      documentService.Service
	PreferencesService   preferencesService.Service
	ConcentrationService concentrationService.Service
	SavesService         savesService.Service
	DamageService        damageService.Service
	NotifierService      notifierService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	World config.WorldConfig
	Wait  config.WaitConfig

	DNDClient dnd5e.Client // Optional
	Localizer i18n.Localizer
	Roller    dice.Roller
	UUIDs     uuid.Generator
	Publisher documentService.Publisher

	// RedisClient backs every repository not set below. Nil keeps them in memory.
	RedisClient redis.UniversalClient

	ActorRepository   actors.Repository
	TokenRepository   tokens.Repository
	EffectRepository  effects.Repository
	MessageRepository messages.Repository
	UserRepository    users.Repository
}

// NewProvider creates a new service provider with all services initialized
// and their hooks registered on a fresh bus
func NewProvider(cfg *ProviderConfig) (*Provider, error) {
	if cfg == nil {
		cfg = &ProviderConfig{}
	}

	actorRepo, tokenRepo, effectRepo, messageRepo, userRepo := defaultRepositories(cfg.RedisClient)
	if cfg.ActorRepository != nil {
		actorRepo = cfg.ActorRepository
	}
	if cfg.TokenRepository != nil {
		tokenRepo = cfg.TokenRepository
	}
	if cfg.EffectRepository != nil {
		effectRepo = cfg.EffectRepository
	}
	if cfg.MessageRepository != nil {
		messageRepo = cfg.MessageRepository
	}
	if cfg.UserRepository != nil {
		userRepo = cfg.UserRepository
	}

	localizer := cfg.Localizer
	if localizer == nil {
		var err error
		localizer, err = i18n.NewDefaultLocalizer(cfg.World.Locale)
		if err != nil {
			return nil, err
		}
	}

	bus := events.NewBus()
	cardBuilder := cards.NewBuilder(localizer)

	docSvc := documentService.NewService(&documentService.ServiceConfig{
		Bus:           bus,
		ActorRepo:     actorRepo,
		TokenRepo:     tokenRepo,
		EffectRepo:    effectRepo,
		MessageRepo:   messageRepo,
		UserRepo:      userRepo,
		UUIDGenerator: cfg.UUIDs,
		Publisher:     cfg.Publisher,
	})

	prefSvc := preferencesService.NewService(&preferencesService.ServiceConfig{
		World:       cfg.World,
		Registry:    preferencesService.NewRegistry(),
		Localizer:   localizer,
		DocumentSvc: docSvc,
	})

	concSvc := concentrationService.NewService(&concentrationService.ServiceConfig{
		DocumentSvc:    docSvc,
		PreferencesSvc: prefSvc,
		Localizer:      localizer,
		WaitInterval:   cfg.Wait.Interval,
		WaitTimeout:    cfg.Wait.Timeout,
	})

	saveSvc := savesService.NewService(&savesService.ServiceConfig{
		DocumentSvc:      docSvc,
		ConcentrationSvc: concSvc,
		PreferencesSvc:   prefSvc,
		Cards:            cardBuilder,
		Roller:           cfg.Roller,
	})

	dmgSvc := damageService.NewService(&damageService.ServiceConfig{
		ConcentrationSvc: concSvc,
		SavesSvc:         saveSvc,
	})

	notifySvc := notifierService.NewService(&notifierService.ServiceConfig{
		DocumentSvc: docSvc,
		SavesSvc:    saveSvc,
		Cards:       cardBuilder,
	})

	prefSvc.RegisterHooks(bus)
	concSvc.RegisterHooks(bus)
	dmgSvc.RegisterHooks(bus)
	notifySvc.RegisterHooks(bus)

	return &Provider{
		Bus:                  bus,
		Localizer:            localizer,
		Cards:                cardBuilder,
		DNDClient:            cfg.DNDClient,
		DocumentService:      docSvc,
		PreferencesService:   prefSvc,
		ConcentrationService: concSvc,
		SavesService:         saveSvc,
		DamageService:        dmgSvc,
		NotifierService:      notifySvc,
	}, nil
}

// defaultRepositories builds Redis repositories when a client is given and
// in-memory ones otherwise
func defaultRepositories(client redis.UniversalClient) (actors.Repository, tokens.Repository, effects.Repository, messages.Repository, users.Repository) {
	if client == nil {
		return actors.NewInMemoryRepository(),
			tokens.NewInMemoryRepository(),
			effects.NewInMemoryRepository(),
			messages.NewInMemoryRepository(),
			users.NewInMemoryRepository()
	}

	return actors.NewRedisRepository(&actors.RedisRepoConfig{Client: client}),
		tokens.NewRedisRepository(&tokens.RedisRepoConfig{Client: client}),
		effects.NewRedisRepository(&effects.RedisRepoConfig{Client: client}),
		messages.NewRedisRepository(&messages.RedisRepoConfig{Client: client}),
		users.NewRedisRepository(&users.RedisRepoConfig{Client: client})
}
