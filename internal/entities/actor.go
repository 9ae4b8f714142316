package entities

import (
	"sort"
)

// PermissionLevel is a user's access level on a document
type PermissionLevel int

const (
	PermissionNone PermissionLevel = iota
	PermissionLimited
	PermissionObserver
	PermissionOwner
)

// AbilityScore holds one ability and whether the actor adds proficiency to its saves
type AbilityScore struct {
	Score          int  `json:"score"`
	SaveProficient bool `json:"save_proficient"`
}

// TokenRef identifies the scene token a synthetic actor belongs to
type TokenRef struct {
	SceneID string `json:"scene_id"`
	TokenID string `json:"token_id"`
}

// Actor is a character or creature that can cast and concentrate
type Actor struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	Type             string                     `json:"type"`
	Img              string                     `json:"img,omitempty"`
	Token            *TokenRef                  `json:"token,omitempty"` // Set for unlinked token actors
	HitPoints        HitPoints                  `json:"hit_points"`
	Abilities        map[Ability]*AbilityScore  `json:"abilities"`
	ProficiencyBonus int                        `json:"proficiency_bonus"`
	Permissions      map[string]PermissionLevel `json:"permissions"`
	Flags            map[string]string          `json:"flags,omitempty"`
	Items            []*Item                    `json:"items,omitempty"`
}

// UUID returns the actor's address. Synthetic token actors are addressed through their token.
func (a *Actor) UUID() Address {
	if a.Token != nil {
		return TokenAddress(a.Token.SceneID, a.Token.TokenID) + Address("."+DocumentActor+"."+a.ID)
	}
	return ActorAddress(a.ID)
}

func (a *Actor) canonicalActor() *Actor { return a }

// GetItem returns the owned item with the given id
func (a *Actor) GetItem(itemID string) *Item {
	for _, item := range a.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// Owners returns the ids of every user with owner permission, sorted
func (a *Actor) Owners() []string {
	var owners []string
	for userID, level := range a.Permissions {
		if level == PermissionOwner {
			owners = append(owners, userID)
		}
	}
	sort.Strings(owners)
	return owners
}

// Flag returns a character flag value
func (a *Actor) Flag(name string) (string, bool) {
	if a.Flags == nil {
		return "", false
	}
	v, ok := a.Flags[name]
	return v, ok
}

// AbilityModifier returns the standard (score-10)/2 modifier, rounded down
func (a *Actor) AbilityModifier(ability Ability) int {
	score := 10
	if as, ok := a.Abilities[ability]; ok && as != nil {
		score = as.Score
	}
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// SaveBonus returns the saving throw bonus for an ability
func (a *Actor) SaveBonus(ability Ability) int {
	bonus := a.AbilityModifier(ability)
	if as, ok := a.Abilities[ability]; ok && as != nil && as.SaveProficient {
		bonus += a.ProficiencyBonus
	}
	return bonus
}

// Clone returns a deep copy of the actor
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	c := *a
	if a.Token != nil {
		t := *a.Token
		c.Token = &t
	}
	if a.Abilities != nil {
		c.Abilities = make(map[Ability]*AbilityScore, len(a.Abilities))
		for k, v := range a.Abilities {
			if v == nil {
				continue
			}
			score := *v
			c.Abilities[k] = &score
		}
	}
	if a.Permissions != nil {
		c.Permissions = make(map[string]PermissionLevel, len(a.Permissions))
		for k, v := range a.Permissions {
			c.Permissions[k] = v
		}
	}
	if a.Flags != nil {
		c.Flags = make(map[string]string, len(a.Flags))
		for k, v := range a.Flags {
			c.Flags[k] = v
		}
	}
	if a.Items != nil {
		c.Items = make([]*Item, len(a.Items))
		for i, item := range a.Items {
			c.Items[i] = item.Snapshot()
		}
	}
	return &c
}

// HitPointsPatch is a partial update of hit points. Nil fields are left unchanged.
type HitPointsPatch struct {
	Value *int `json:"value,omitempty"`
	Temp  *int `json:"temp,omitempty"`
	Max   *int `json:"max,omitempty"`
}

// ActorPatch is a partial update of an actor
type ActorPatch struct {
	Name      *string            `json:"name,omitempty"`
	HitPoints *HitPointsPatch    `json:"hit_points,omitempty"`
	Flags     map[string]*string `json:"flags,omitempty"` // nil value removes the flag
	AddItems  []*Item            `json:"add_items,omitempty"`
}

// Apply writes the patch onto the actor
func (p *ActorPatch) Apply(a *Actor) {
	if p == nil || a == nil {
		return
	}

	if p.Name != nil {
		a.Name = *p.Name
	}

	if hp := p.HitPoints; hp != nil {
		if hp.Value != nil {
			a.HitPoints.Value = *hp.Value
		}
		if hp.Temp != nil {
			a.HitPoints.Temp = *hp.Temp
		}
		if hp.Max != nil {
			a.HitPoints.Max = *hp.Max
		}
	}

	for name, value := range p.Flags {
		if value == nil {
			delete(a.Flags, name)
			continue
		}
		if a.Flags == nil {
			a.Flags = make(map[string]string)
		}
		a.Flags[name] = *value
	}

	for _, item := range p.AddItems {
		item.ActorID = a.ID
		a.Items = append(a.Items, item)
	}
}
