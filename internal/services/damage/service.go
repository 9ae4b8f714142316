package damage

import (
	"context"
	"log"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/events"
	"github.com/KirkDiggler/concentration-bot/internal/services/concentration"
	"github.com/KirkDiggler/concentration-bot/internal/services/saves"
)

// Keys the capture phase stores on the update operation
const (
	opKeySave   = "concentration.save"
	opKeyDamage = "concentration.damage"
)

// DamageTaken compares hit points before an update with the patch. Fields
// missing from the patch count as unchanged.
func DamageTaken(before entities.HitPoints, patch *entities.HitPointsPatch) int {
	if patch == nil {
		return 0
	}

	newValue, newTemp := before.Value, before.Temp
	if patch.Value != nil {
		newValue = *patch.Value
	}
	if patch.Temp != nil {
		newTemp = *patch.Temp
	}
	return (before.Temp + before.Value) - (newTemp + newValue)
}

// Service turns hit point loss into concentration save requests
type Service interface {
	// RegisterHooks subscribes the capture and trigger listeners
	RegisterHooks(bus *events.Bus)
}

// ServiceConfig holds configuration for the damage service
type ServiceConfig struct {
	ConcentrationSvc concentration.Service
	SavesSvc         saves.Service
}

type service struct {
	concentrationSvc concentration.Service
	savesSvc         saves.Service
}

// NewService creates a new damage service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.ConcentrationSvc == nil {
		panic("concentration service is required")
	}
	if cfg.SavesSvc == nil {
		panic("saves service is required")
	}

	return &service{
		concentrationSvc: cfg.ConcentrationSvc,
		savesSvc:         cfg.SavesSvc,
	}
}

func (s *service) RegisterHooks(bus *events.Bus) {
	bus.SubscribeFunc(events.EventTypePreUpdateActor, "damage.capture", events.PriorityCapture, s.capture)
	bus.SubscribeFunc(events.EventTypeUpdateActor, "damage.trigger", events.PriorityNotify, s.trigger)
}

// capture runs before the patch is applied and tags the operation when the
// actor loses hit points
func (s *service) capture(_ context.Context, event events.Event) error {
	evt, ok := event.(*events.PreUpdateActorEvent)
	if !ok || evt.Actor == nil || evt.Operation == nil || evt.Operation.Patch == nil {
		return nil
	}

	damage := DamageTaken(evt.Actor.HitPoints, evt.Operation.Patch.HitPoints)
	if damage <= 0 {
		return nil
	}

	evt.Operation.Set(opKeySave, true)
	evt.Operation.Set(opKeyDamage, damage)
	return nil
}

// trigger runs after the update and requests a save, once, for the user who
// made the update
func (s *service) trigger(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.UpdateActorEvent)
	if !ok || evt.Actor == nil || evt.Operation == nil {
		return nil
	}
	if evt.GetUserID() != evt.Operation.UserID {
		return nil
	}

	if save, _ := evt.Operation.Value(opKeySave); save != true {
		return nil
	}
	value, _ := evt.Operation.Value(opKeyDamage)
	damage, _ := value.(int)

	effect, err := s.concentrationSvc.IsConcentratingOnAnything(ctx, evt.Actor)
	if err != nil {
		log.Printf("[DAMAGE] Failed to check concentration of %s: %v", evt.Actor.Name, err)
		return nil
	}
	if effect == nil {
		return nil
	}

	dc := saves.DCForDamage(damage)
	log.Printf("[DAMAGE] %s took %d damage while concentrating on %s, DC %d", evt.Actor.Name, damage, effect.ItemName(), dc)

	if _, err := s.savesSvc.RequestSavingThrow(ctx, evt.Actor, &saves.RequestOptions{
		DC:            dc,
		Damage:        damage,
		UserID:        evt.Operation.UserID,
		SessionUserID: evt.GetUserID(),
	}); err != nil {
		if dnderr.IsNotConcentrating(err) {
			log.Printf("[DAMAGE] %s stopped concentrating before the save was requested", evt.Actor.Name)
			return nil
		}
		log.Printf("[DAMAGE] Failed to request concentration save from %s: %v", evt.Actor.Name, err)
	}
	return nil
}
