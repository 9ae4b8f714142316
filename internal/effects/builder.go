package effects

import (
	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Builder assembles an effect before it is created on an actor
type Builder struct {
	effect *entities.Effect
}

// NewBuilder creates a new effect builder
func NewBuilder(label string) *Builder {
	return &Builder{
		effect: &entities.Effect{
			Label: label,
		},
	}
}

// ForActor sets the actor the effect will be embedded on
func (b *Builder) ForActor(actorID string) *Builder {
	b.effect.ActorID = actorID
	return b
}

// WithIcon sets the display icon
func (b *Builder) WithIcon(icon string) *Builder {
	b.effect.Icon = icon
	return b
}

// WithOrigin sets the document the effect came from
func (b *Builder) WithOrigin(origin entities.Address) *Builder {
	b.effect.Origin = origin
	return b
}

// WithDescription adds a description
func (b *Builder) WithDescription(desc string) *Builder {
	b.effect.Description = desc
	return b
}

// WithItemDuration converts an item's duration into the effect's remaining duration
func (b *Builder) WithItemDuration(duration entities.ItemDuration) *Builder {
	b.effect.Duration = DurationFromItem(duration)
	return b
}

// WithConcentration attaches concentration data and the concentration status
func (b *Builder) WithConcentration(data *entities.ConcentrationData) *Builder {
	b.effect.StatusID = entities.StatusConcentration
	b.effect.Concentration = data
	return b
}

// Build returns a copy of the effect so the builder can be reused
func (b *Builder) Build() *entities.Effect {
	return b.effect.Clone()
}
