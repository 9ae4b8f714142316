package dice

// randomRoller implements Roller using math/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, ModeAdvantage)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, ModeDisadvantage)
}

func (r *randomRoller) rollPair(sides, bonus int, mode Mode) (*RollResult, error) {
	pair, err := Roll(2, sides, 0)
	if err != nil {
		return nil, err
	}

	values := make([]int, len(pair.Dice))
	for i, d := range pair.Dice {
		values[i] = d.Value
	}
	return NewRollResult(sides, bonus, mode, values...), nil
}
