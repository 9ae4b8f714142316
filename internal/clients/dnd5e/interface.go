package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e . Client

import (
	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Client looks spells up in the D&D 5e SRD
type Client interface {
	// GetSpell returns the spell with the given key as an unowned item
	GetSpell(key string) (*entities.Item, error)

	// ListSpellsByLevel returns the keys and names of the spells of a level
	ListSpellsByLevel(level int) ([]*SpellReference, error)
}

// SpellReference names a spell without loading it
type SpellReference struct {
	Key  string
	Name string
}
