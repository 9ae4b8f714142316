package entities

import "time"

// StatusConcentration is the status tag that marks an effect as a concentration record
const StatusConcentration = "concentration"

// EffectDuration is the remaining time of an effect. All fields nil means unlimited.
type EffectDuration struct {
	Rounds  *int `json:"rounds,omitempty"`
	Turns   *int `json:"turns,omitempty"`
	Seconds *int `json:"seconds,omitempty"`
}

// IsZero reports whether the effect is not time-limited
func (d EffectDuration) IsZero() bool {
	return d.Rounds == nil && d.Turns == nil && d.Seconds == nil
}

// CastingData records how the concentration was started
type CastingData struct {
	ItemID    string   `json:"item_id"`
	ItemUUID  Address  `json:"item_uuid"`
	BaseLevel int      `json:"base_level"`
	CastLevel int      `json:"cast_level"`
	Extra     Metadata `json:"extra,omitempty"` // Caller supplied fields
}

// ConcentrationData is the module data stored on a concentration effect
type ConcentrationData struct {
	ActorID   string      `json:"actor_id"`
	ActorUUID Address     `json:"actor_uuid"`
	Item      *Item       `json:"item"` // Snapshot taken when the effect was created
	Casting   CastingData `json:"casting"`
	Message   Metadata    `json:"message,omitempty"`
}

// Effect is a status embedded on an actor
type Effect struct {
	ID            string             `json:"id"`
	ActorID       string             `json:"actor_id"`
	StatusID      string             `json:"status_id,omitempty"`
	Label         string             `json:"label"`
	Icon          string             `json:"icon"`
	Origin        Address            `json:"origin,omitempty"`
	Description   string             `json:"description,omitempty"`
	Duration      EffectDuration     `json:"duration"`
	Concentration *ConcentrationData `json:"concentration,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// UUID returns the effect's address
func (e *Effect) UUID() Address {
	return EffectAddress(e.ActorID, e.ID)
}

// IsConcentration reports whether the effect carries the concentration status tag
func (e *Effect) IsConcentration() bool {
	return e != nil && e.StatusID == StatusConcentration
}

// ItemName returns the name of the item being concentrated on
func (e *Effect) ItemName() string {
	if e.Concentration == nil || e.Concentration.Item == nil {
		return e.Label
	}
	return e.Concentration.Item.Name
}

// ItemDescription returns the description of the item being concentrated on
func (e *Effect) ItemDescription() string {
	if e.Concentration == nil || e.Concentration.Item == nil {
		return ""
	}
	return e.Concentration.Item.Description
}

// Clone returns a deep copy of the effect
func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	c := *e
	c.Duration = EffectDuration{
		Rounds:  clonePtr(e.Duration.Rounds),
		Turns:   clonePtr(e.Duration.Turns),
		Seconds: clonePtr(e.Duration.Seconds),
	}
	if e.Concentration != nil {
		cd := *e.Concentration
		cd.Item = e.Concentration.Item.Snapshot()
		cd.Casting.Extra = e.Concentration.Casting.Extra.Clone()
		cd.Message = e.Concentration.Message.Clone()
		c.Concentration = &cd
	}
	return &c
}

func clonePtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
