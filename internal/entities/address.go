package entities

import (
	"fmt"
	"strings"
)

// Address is the UUID-style path of a document, e.g. "Actor.abc" or
// "Actor.abc.ActiveEffect.def". Addresses survive the deletion of the
// document they point to, which is why concentration records keep them.
type Address string

// Document type names used in addresses
const (
	DocumentActor   = "Actor"
	DocumentItem    = "Item"
	DocumentEffect  = "ActiveEffect"
	DocumentMessage = "ChatMessage"
	DocumentScene   = "Scene"
	DocumentToken   = "Token"
)

// AddressPart is one type/id pair of an address
type AddressPart struct {
	Type string
	ID   string
}

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is empty
func (a Address) IsZero() bool { return a == "" }

// Parts splits the address into type/id pairs
func (a Address) Parts() ([]AddressPart, error) {
	if a == "" {
		return nil, fmt.Errorf("empty address")
	}

	segments := strings.Split(string(a), ".")
	if len(segments)%2 != 0 {
		return nil, fmt.Errorf("malformed address %q", a)
	}

	parts := make([]AddressPart, 0, len(segments)/2)
	for i := 0; i < len(segments); i += 2 {
		if segments[i] == "" || segments[i+1] == "" {
			return nil, fmt.Errorf("malformed address %q", a)
		}
		parts = append(parts, AddressPart{Type: segments[i], ID: segments[i+1]})
	}
	return parts, nil
}

// Find returns the id of the first part with the given document type
func (a Address) Find(docType string) (string, bool) {
	parts, err := a.Parts()
	if err != nil {
		return "", false
	}
	for _, p := range parts {
		if p.Type == docType {
			return p.ID, true
		}
	}
	return "", false
}

// ActorAddress returns the address of a world actor
func ActorAddress(actorID string) Address {
	return Address(DocumentActor + "." + actorID)
}

// TokenAddress returns the address of a token placed on a scene
func TokenAddress(sceneID, tokenID string) Address {
	return Address(DocumentScene + "." + sceneID + "." + DocumentToken + "." + tokenID)
}

// ItemAddress returns the address of an item. Items without an owner live at the world level.
func ItemAddress(actorID, itemID string) Address {
	if actorID == "" {
		return Address(DocumentItem + "." + itemID)
	}
	return Address(DocumentActor + "." + actorID + "." + DocumentItem + "." + itemID)
}

// EffectAddress returns the address of an effect embedded on an actor
func EffectAddress(actorID, effectID string) Address {
	return Address(DocumentActor + "." + actorID + "." + DocumentEffect + "." + effectID)
}

// MessageAddress returns the address of a chat message
func MessageAddress(messageID string) Address {
	return Address(DocumentMessage + "." + messageID)
}
