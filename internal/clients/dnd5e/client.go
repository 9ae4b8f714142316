package dnd5e

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
)

// spellAPI is the part of the SRD API this client uses
type spellAPI interface {
	GetSpell(key string) (*apiEntities.Spell, error)
	ListSpells(input *dnd5e.ListSpellsInput) ([]*apiEntities.ReferenceItem, error)
}

type client struct {
	client spellAPI
}

type Config struct {
	HttpClient *http.Client
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("cfg is required")
	}

	dndClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: cfg.HttpClient,
	})
	if err != nil {
		return nil, err
	}

	return &client{
		client: dndClient,
	}, nil
}

// SpellKey turns a spell name into its SRD key, e.g. "Hunter's Mark" to "hunters-mark"
func SpellKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("'", "", "’", "", "/", "-").Replace(key)
	return strings.Join(strings.Fields(key), "-")
}

func (c *client) GetSpell(key string) (*entities.Item, error) {
	apiSpell, err := c.client.GetSpell(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get spell %s: %w", key, err)
	}
	if apiSpell == nil {
		return nil, dnderr.NotFoundf("spell %s not found", key)
	}

	return convertSpell(apiSpell), nil
}

func (c *client) ListSpellsByLevel(level int) ([]*SpellReference, error) {
	refs, err := c.client.ListSpells(&dnd5e.ListSpellsInput{
		Level: &level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list level %d spells: %w", level, err)
	}

	result := make([]*SpellReference, len(refs))
	for i, ref := range refs {
		result[i] = &SpellReference{
			Key:  ref.Key,
			Name: ref.Name,
		}
	}
	return result, nil
}
