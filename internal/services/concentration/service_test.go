package concentration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/config"
	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/actors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories/tokens"
	"github.com/KirkDiggler/concentration-bot/internal/services"
	"github.com/KirkDiggler/concentration-bot/internal/services/concentration"
	"github.com/KirkDiggler/concentration-bot/internal/services/preferences"
	"github.com/KirkDiggler/concentration-bot/internal/testutils"
	"github.com/KirkDiggler/concentration-bot/internal/uuid"
	"github.com/stretchr/testify/suite"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []*entities.Message
}

func (p *recordingPublisher) Publish(_ context.Context, message *entities.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, message)
	return nil
}

func (p *recordingPublisher) kinds() []entities.MessageKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.MessageKind, 0, len(p.published))
	for _, m := range p.published {
		out = append(out, m.Kind)
	}
	return out
}

type ConcentrationServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	actorRepo actors.Repository
	tokenRepo tokens.Repository
	publisher *recordingPublisher
	provider  *services.Provider
	svc       concentration.Service

	wizard *entities.Actor
	bless  *entities.Item
	haste  *entities.Item
}

func (s *ConcentrationServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.actorRepo = actors.NewInMemoryRepository()
	s.tokenRepo = tokens.NewInMemoryRepository()
	s.publisher = &recordingPublisher{}
	s.provider = s.newProvider(config.WorldConfig{Locale: "en-US"})
	s.svc = s.provider.ConcentrationService

	s.wizard = testutils.CreateTestCaster("a1", "player", "Gandalf")
	s.bless = testutils.CreateTestSpell("a1", "i1", "Bless", 1)
	s.haste = testutils.CreateTestSpell("a1", "i2", "Haste", 3)
	s.wizard.Items = []*entities.Item{s.bless, s.haste}
	s.Require().NoError(s.actorRepo.Create(s.ctx, s.wizard))
}

func (s *ConcentrationServiceTestSuite) newProvider(world config.WorldConfig) *services.Provider {
	provider, err := services.NewProvider(&services.ProviderConfig{
		World:           world,
		Wait:            config.WaitConfig{Interval: 5 * time.Millisecond, Timeout: 200 * time.Millisecond},
		UUIDs:           uuid.NewSequenceGenerator("id"),
		Publisher:       s.publisher,
		ActorRepository: s.actorRepo,
		TokenRepository: s.tokenRepo,
	})
	s.Require().NoError(err)
	return provider
}

func TestConcentrationServiceSuite(t *testing.T) {
	suite.Run(t, new(ConcentrationServiceTestSuite))
}

func (s *ConcentrationServiceTestSuite) start(item *entities.Item, level int) []*entities.Effect {
	created, err := s.svc.StartConcentration(s.ctx, &concentration.StartRequest{
		Item:      item,
		CastLevel: level,
		UserID:    "player",
	})
	s.Require().NoError(err)
	return created
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_CreatesEffect() {
	created := s.start(s.bless, 0)
	s.Require().Len(created, 1)

	effect := created[0]
	s.Equal("Bless", effect.Label)
	s.True(effect.IsConcentration())
	s.Equal(preferences.DefaultConcentrationIcon, effect.Icon)
	s.Equal(s.bless.UUID(), effect.Origin)
	s.Equal("You are concentrating on Bless.", effect.Description)
	s.Require().NotNil(effect.Duration.Seconds)
	s.Equal(60, *effect.Duration.Seconds)

	s.Require().NotNil(effect.Concentration)
	s.Equal("a1", effect.Concentration.ActorID)
	s.Equal(s.wizard.UUID(), effect.Concentration.ActorUUID)
	s.Equal(1, effect.Concentration.Casting.BaseLevel)
	s.Equal(1, effect.Concentration.Casting.CastLevel)
	s.Equal("Bless", effect.Concentration.Item.Name)

	s.Equal([]entities.MessageKind{entities.MessageKindGain}, s.publisher.kinds())
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_SameItemSameLevelIsNoop() {
	s.Require().Len(s.start(s.bless, 1), 1)

	created := s.start(s.bless, 1)
	s.NotNil(created)
	s.Empty(created)

	effects, err := s.provider.DocumentService.ActorEffects(s.ctx, s.wizard)
	s.Require().NoError(err)
	s.Len(effects, 1)
	s.Len(s.publisher.kinds(), 1)
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_SameItemHigherLevelReplaces() {
	first := s.start(s.bless, 1)
	s.Require().Len(first, 1)

	second := s.start(s.bless, 2)
	s.Require().Len(second, 1)
	s.NotEqual(first[0].ID, second[0].ID)
	s.Equal(2, second[0].Concentration.Casting.CastLevel)
	s.Equal(1, second[0].Concentration.Casting.BaseLevel)

	s.Equal([]entities.MessageKind{
		entities.MessageKindGain,
		entities.MessageKindLoss,
		entities.MessageKindGain,
	}, s.publisher.kinds())
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_DifferentItemReplaces() {
	s.Require().Len(s.start(s.bless, 1), 1)
	s.Require().Len(s.start(s.haste, 3), 1)

	current, err := s.svc.IsConcentratingOnAnything(s.ctx, s.wizard)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal("Haste", current.ItemName())

	onBless, err := s.svc.IsConcentratingOnItem(s.ctx, s.wizard, s.bless)
	s.Require().NoError(err)
	s.Nil(onBless)
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_NoActor() {
	orphan := testutils.CreateTestSpell("", "i9", "Bless", 1)

	created, err := s.svc.StartConcentration(s.ctx, &concentration.StartRequest{Item: orphan})
	s.NoError(err)
	s.Nil(created)

	created, err = s.svc.StartConcentration(s.ctx, &concentration.StartRequest{
		Item:  orphan,
		Actor: entities.ActorAddress("missing"),
	})
	s.NoError(err)
	s.Nil(created)
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_UnownedItemUsesActorAddress() {
	orphan := testutils.CreateTestSpell("", "i9", "Bless", 1)

	created, err := s.svc.StartConcentration(s.ctx, &concentration.StartRequest{
		Item:  orphan,
		Actor: s.wizard.UUID(),
	})
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal("a1", created[0].ActorID)
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_RequiresItem() {
	_, err := s.svc.StartConcentration(s.ctx, &concentration.StartRequest{})
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *ConcentrationServiceTestSuite) TestStartConcentration_WorldSettings() {
	provider := s.newProvider(config.WorldConfig{
		Locale:              "en-US",
		UseItemImage:        true,
		PrependEffectLabels: true,
		ConcentrationIcon:   "icons/custom.webp",
	})

	s.bless.Img = "icons/bless.webp"
	created, err := provider.ConcentrationService.StartConcentration(s.ctx, &concentration.StartRequest{Item: s.bless})
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal("Concentration Notifier - Bless", created[0].Label)
	s.Equal("icons/bless.webp", created[0].Icon)

	created, err = provider.ConcentrationService.StartConcentration(s.ctx, &concentration.StartRequest{Item: s.haste})
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal("icons/custom.webp", created[0].Icon)
}

func (s *ConcentrationServiceTestSuite) TestEndConcentrationOnActor() {
	s.Require().Len(s.start(s.bless, 1), 1)

	ended, err := s.svc.EndConcentrationOnActor(s.ctx, s.wizard, "player")
	s.Require().NoError(err)
	s.Require().Len(ended, 1)
	s.Equal("Bless", ended[0].ItemName())

	current, err := s.svc.IsConcentratingOnAnything(s.ctx, s.wizard)
	s.Require().NoError(err)
	s.Nil(current)

	ended, err = s.svc.EndConcentrationOnActor(s.ctx, s.wizard, "player")
	s.NoError(err)
	s.Empty(ended)
}

func (s *ConcentrationServiceTestSuite) TestEndConcentrationOnItem() {
	s.Require().Len(s.start(s.bless, 1), 1)

	_, err := s.svc.EndConcentrationOnItem(s.ctx, s.wizard, s.haste, "player")
	s.Require().Error(err)
	s.True(dnderr.IsNotFound(err))
	severity, key := dnderr.GetSeverity(err)
	s.Equal(dnderr.SeverityWarn, severity)
	s.Equal("CN.WARN.MISSING_CONC_ON_ITEM", key)

	ended, err := s.svc.EndConcentrationOnItem(s.ctx, s.wizard, s.bless, "player")
	s.Require().NoError(err)
	s.Len(ended, 1)
}

func (s *ConcentrationServiceTestSuite) TestWaitForConcentration() {
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = s.svc.StartConcentration(context.Background(), &concentration.StartRequest{Item: s.bless})
	}()

	effect, ok := s.svc.WaitForConcentration(s.ctx, s.wizard, s.bless)
	s.True(ok)
	s.Require().NotNil(effect)
	s.Equal("Bless", effect.ItemName())
}

func (s *ConcentrationServiceTestSuite) TestWaitForConcentration_TimesOut() {
	effect, ok := s.svc.WaitForConcentration(s.ctx, s.wizard, s.bless)
	s.False(ok)
	s.Nil(effect)
}

func (s *ConcentrationServiceTestSuite) TestWaitForConcentration_ContextCancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, ok := s.svc.WaitForConcentration(ctx, s.wizard, s.bless)
	s.False(ok)
}

func (s *ConcentrationServiceTestSuite) TestConcurrentStartsLeaveOneEffect() {
	var wg sync.WaitGroup
	for _, item := range []*entities.Item{s.bless, s.haste, s.bless, s.haste} {
		wg.Add(1)
		go func(item *entities.Item) {
			defer wg.Done()
			_, _ = s.svc.StartConcentration(s.ctx, &concentration.StartRequest{Item: item})
		}(item)
	}
	wg.Wait()

	effects, err := s.provider.DocumentService.ActorEffects(s.ctx, s.wizard)
	s.Require().NoError(err)
	s.Len(effects, 1)
}
