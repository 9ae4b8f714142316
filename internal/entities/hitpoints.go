package entities

// HitPoints holds an actor's health pool
type HitPoints struct {
	Value int `json:"value"`
	Temp  int `json:"temp"`
	Max   int `json:"max"`
}

// Total is the damage an actor can absorb before dropping
func (hp HitPoints) Total() int {
	return hp.Value + hp.Temp
}

// AfterDamage returns the pool after taking damage, temporary hit points first.
// Negative amounts heal and never raise the value above max.
func (hp HitPoints) AfterDamage(amount int) HitPoints {
	if amount < 0 {
		return hp.AfterHealing(-amount)
	}

	next := hp
	if next.Temp > 0 {
		if next.Temp >= amount {
			next.Temp -= amount
			return next
		}
		amount -= next.Temp
		next.Temp = 0
	}

	next.Value -= amount
	if next.Value < 0 {
		next.Value = 0
	}
	return next
}

// AfterHealing returns the pool after healing, capped at max
func (hp HitPoints) AfterHealing(amount int) HitPoints {
	next := hp
	if amount <= 0 {
		return next
	}
	next.Value += amount
	if next.Max > 0 && next.Value > next.Max {
		next.Value = next.Max
	}
	return next
}

// Patch returns the patch that moves hp to next
func (hp HitPoints) Patch(next HitPoints) *HitPointsPatch {
	patch := &HitPointsPatch{}
	if next.Value != hp.Value {
		v := next.Value
		patch.Value = &v
	}
	if next.Temp != hp.Temp {
		t := next.Temp
		patch.Temp = &t
	}
	if next.Max != hp.Max {
		m := next.Max
		patch.Max = &m
	}
	return patch
}
