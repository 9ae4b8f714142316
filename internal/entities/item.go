package entities

// DurationUnit is the time unit of an item's duration
type DurationUnit string

const (
	UnitInstant   DurationUnit = "inst"
	UnitTurn      DurationUnit = "turn"
	UnitRound     DurationUnit = "round"
	UnitMinute    DurationUnit = "minute"
	UnitHour      DurationUnit = "hour"
	UnitDay       DurationUnit = "day"
	UnitMonth     DurationUnit = "month"
	UnitYear      DurationUnit = "year"
	UnitPermanent DurationUnit = "perm"
	UnitSpecial   DurationUnit = "spec"
)

// ItemDuration is how long an item's effect lasts
type ItemDuration struct {
	Value int          `json:"value"`
	Units DurationUnit `json:"units"`
}

// Item is a spell or feature an actor can use
type Item struct {
	ID            string       `json:"id"`
	ActorID       string       `json:"actor_id,omitempty"`
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	Img           string       `json:"img,omitempty"`
	Level         int          `json:"level"`
	School        string       `json:"school,omitempty"`
	Duration      ItemDuration `json:"duration"`
	Concentration bool         `json:"concentration"`
	Description   string       `json:"description,omitempty"`
	Source        string       `json:"source,omitempty"` // Catalog key the item was imported from
}

// UUID returns the item's address
func (i *Item) UUID() Address {
	return ItemAddress(i.ActorID, i.ID)
}

// Snapshot returns a copy of the item that is safe to store on another document
func (i *Item) Snapshot() *Item {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
