package entities

import (
	"time"

	"github.com/KirkDiggler/concentration-bot/internal/dice"
)

// MessageKind identifies what an announcement is about
type MessageKind string

const (
	MessageKindChat        MessageKind = "chat"
	MessageKindCast        MessageKind = "cast"
	MessageKindSaveRequest MessageKind = "save_request"
	MessageKindSaveResult  MessageKind = "save_result"
	MessageKindGain        MessageKind = "concentration_gained"
	MessageKindLoss        MessageKind = "concentration_lost"
)

// Button actions carried on save requests
const (
	ButtonSave   = "save"
	ButtonDelete = "delete"
)

// Speaker is who a message appears to come from
type Speaker struct {
	Alias   string `json:"alias,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
}

// CardField is a titled block of a card
type CardField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// CardButton is an interactive affordance on a card
type CardButton struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

// Card is the presentational content of a message
type Card struct {
	Title   string       `json:"title"`
	Icon    string       `json:"icon,omitempty"`
	Content string       `json:"content"`
	Details string       `json:"details,omitempty"` // Collapsible section, usually an item description
	Fields  []CardField  `json:"fields,omitempty"`
	Buttons []CardButton `json:"buttons,omitempty"`
}

// MessageFlags is the module data stored on a message for its buttons
type MessageFlags struct {
	EffectUUID Address `json:"effect_uuid,omitempty"`
	ActorUUID  Address `json:"actor_uuid,omitempty"`
	SaveDC     int     `json:"save_dc,omitempty"`
	CanPopOut  bool    `json:"can_pop_out,omitempty"`
}

// CastData describes the item use a cast announcement reports
type CastData struct {
	TokenID    string `json:"token_id,omitempty"` // Scene.<scene>.Token.<token>
	ActorID    string `json:"actor_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	SpellLevel string `json:"spell_level,omitempty"`
	ItemData   *Item  `json:"item_data,omitempty"` // Item snapshot for items the caster no longer owns
}

// Message is a chat announcement
type Message struct {
	ID        string           `json:"id"`
	Kind      MessageKind      `json:"kind"`
	UserID    string           `json:"user_id"`
	Speaker   Speaker          `json:"speaker"`
	Whisper   []string         `json:"whisper,omitempty"`
	Card      *Card            `json:"card,omitempty"`
	Flags     MessageFlags     `json:"flags"`
	Cast      *CastData        `json:"cast,omitempty"`
	Roll      *dice.RollResult `json:"roll,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// UUID returns the message's address
func (m *Message) UUID() Address {
	return MessageAddress(m.ID)
}

// IsWhisper reports whether the message is only visible to a set of users
func (m *Message) IsWhisper() bool {
	return len(m.Whisper) > 0
}

// Metadata returns the parts of the message worth keeping on other documents
func (m *Message) Metadata() Metadata {
	md := Metadata{
		"id":      m.ID,
		"kind":    string(m.Kind),
		"user_id": m.UserID,
	}
	if m.Speaker.Alias != "" {
		md["speaker"] = m.Speaker.Alias
	}
	if m.Cast != nil {
		md["item_id"] = m.Cast.ItemID
		md["spell_level"] = m.Cast.SpellLevel
		if m.Cast.TokenID != "" {
			md["token_id"] = m.Cast.TokenID
		}
		if m.Cast.ActorID != "" {
			md["actor_id"] = m.Cast.ActorID
		}
	}
	return md
}
