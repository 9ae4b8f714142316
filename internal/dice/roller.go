package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller rolls dice and reports every die, so callers can adjust single
// dice afterwards and recompute the total.
type Roller interface {
	// Roll rolls count dice with the given sides and adds a flat bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls two dice and keeps the higher
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls two dice and keeps the lower
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}
