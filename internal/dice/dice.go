package dice

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
)

// Mode is how multiple d20s are combined
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdvantage
	ModeDisadvantage
)

// DieResult is one rolled die. Count is what the die contributes to the
// total and only differs from Value when the die was adjusted after the roll.
type DieResult struct {
	Value     int  `json:"value"`
	Count     int  `json:"count"`
	Adjusted  bool `json:"adjusted,omitempty"`
	Discarded bool `json:"discarded,omitempty"`
}

// Part is an extra formula term rolled alongside the main dice, e.g. a 1d4 bonus
type Part struct {
	Formula string `json:"formula"`
	Total   int    `json:"total"`
}

// RollResult is the outcome of one roll
type RollResult struct {
	Count     int         `json:"count"`
	Sides     int         `json:"sides"`
	Bonus     int         `json:"bonus"`
	Mode      Mode        `json:"mode"`
	Dice      []DieResult `json:"dice"`
	Modifiers []string    `json:"modifiers,omitempty"` // Die modifiers such as min10 or max18
	Parts     []Part      `json:"parts,omitempty"`
	Total     int         `json:"total"`
	IsCrit    bool        `json:"is_crit"`
	IsFumble  bool        `json:"is_fumble"`
}

// Roll rolls count dice of the given size using math/rand
func Roll(count, size, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}

	if size < 1 {
		return nil, errors.New("invalid dice size")
	}

	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = rand.Intn(size) + 1
	}

	result := NewRollResult(size, bonus, ModeNormal, out...)
	log.Println("Rolling", count, "d", size, ":", out, "total:", result.Total)
	return result, nil
}

// NewRollResult builds a result from already rolled values. With advantage or
// disadvantage the values are the two d20s and only one of them is kept.
func NewRollResult(sides, bonus int, mode Mode, values ...int) *RollResult {
	r := &RollResult{
		Count: len(values),
		Sides: sides,
		Bonus: bonus,
		Mode:  mode,
		Dice:  make([]DieResult, len(values)),
	}
	for i, v := range values {
		r.Dice[i] = DieResult{Value: v, Count: v}
	}
	r.Recalculate()
	return r
}

// Recalculate picks the kept die again and recomputes the total from each die's Count
func (r *RollResult) Recalculate() {
	if r.Mode != ModeNormal && len(r.Dice) > 1 {
		kept := 0
		for i := range r.Dice {
			r.Dice[i].Discarded = false
			if r.Mode == ModeAdvantage && r.Dice[i].Count > r.Dice[kept].Count {
				kept = i
			}
			if r.Mode == ModeDisadvantage && r.Dice[i].Count < r.Dice[kept].Count {
				kept = i
			}
		}
		for i := range r.Dice {
			r.Dice[i].Discarded = i != kept
		}
	}

	total := r.Bonus
	for _, d := range r.Dice {
		if !d.Discarded {
			total += d.Count
		}
	}
	for _, p := range r.Parts {
		total += p.Total
	}
	r.Total = total
}

// Natural returns the value the kept die counts for, or 0 if nothing was rolled
func (r *RollResult) Natural() int {
	for _, d := range r.Dice {
		if !d.Discarded {
			return d.Count
		}
	}
	return 0
}

// AddPart adds an extra term and updates the total
func (r *RollResult) AddPart(part Part) {
	r.Parts = append(r.Parts, part)
	r.Recalculate()
}

// Formula renders the roll as a dice expression, e.g. "2d20khmin10 + 5 + 1d4"
func (r *RollResult) Formula() string {
	if r.Count == 0 {
		return strconv.Itoa(r.Bonus)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d", r.Count, r.Sides)
	switch r.Mode {
	case ModeAdvantage:
		b.WriteString("kh")
	case ModeDisadvantage:
		b.WriteString("kl")
	}
	for _, m := range r.Modifiers {
		b.WriteString(m)
	}

	if r.Bonus > 0 {
		fmt.Fprintf(&b, " + %d", r.Bonus)
	} else if r.Bonus < 0 {
		fmt.Fprintf(&b, " - %d", -r.Bonus)
	}
	for _, p := range r.Parts {
		formula := strings.TrimSpace(p.Formula)
		if strings.HasPrefix(formula, "-") {
			fmt.Fprintf(&b, " - %s", strings.TrimPrefix(formula, "-"))
			continue
		}
		fmt.Fprintf(&b, " + %s", strings.TrimPrefix(formula, "+"))
	}
	return b.String()
}

// Limits on a parsed expression, so a flag cannot ask for an absurd roll
const (
	MaxExpressionDice = 100
	MaxDieSides       = 1000
)

var errInvalidExpression = errors.New("invalid dice string")

// Term is one dice group of an expression, e.g. the -1d4 of "1d6-1d4+2"
type Term struct {
	Count    int
	Sides    int
	Negative bool
}

func (t Term) String() string {
	sign := ""
	if t.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%dd%d", sign, t.Count, t.Sides)
}

// Expression is a parsed dice expression like 1d4+1d6+2
type Expression struct {
	Dice  []Term
	Bonus int
}

// ParseExpression parses sums of dice groups and flat numbers, such as
// "1d4", "d6", "2d6+3", "1d4+1d6-1" and "+2"
func ParseExpression(expr string) (Expression, error) {
	s := strings.ReplaceAll(strings.TrimSpace(expr), " ", "")
	if s == "" {
		return Expression{}, errInvalidExpression
	}

	var out Expression
	total := 0
	for _, token := range splitTerms(s) {
		negative := strings.HasPrefix(token, "-")
		body := strings.TrimLeft(token, "+-")
		if body == "" {
			return Expression{}, errInvalidExpression
		}

		if !strings.Contains(body, "d") {
			n, err := strconv.Atoi(body)
			if err != nil {
				return Expression{}, errInvalidExpression
			}
			if negative {
				n = -n
			}
			out.Bonus += n
			continue
		}

		term, err := parseTerm(body)
		if err != nil {
			return Expression{}, err
		}
		term.Negative = negative
		total += term.Count
		if total > MaxExpressionDice {
			return Expression{}, fmt.Errorf("too many dice in %q, at most %d", expr, MaxExpressionDice)
		}
		out.Dice = append(out.Dice, term)
	}
	return out, nil
}

// splitTerms cuts an expression before every sign, keeping the sign
func splitTerms(s string) []string {
	var terms []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			terms = append(terms, s[start:i])
			start = i
		}
	}
	return append(terms, s[start:])
}

func parseTerm(body string) (Term, error) {
	parts := strings.Split(body, "d")
	if len(parts) != 2 {
		return Term{}, errInvalidExpression
	}

	term := Term{Count: 1}
	if parts[0] != "" {
		count, err := strconv.Atoi(parts[0])
		if err != nil {
			return Term{}, errInvalidExpression
		}
		term.Count = count
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil {
		return Term{}, errInvalidExpression
	}
	term.Sides = sides

	if term.Count < 1 || term.Sides < 1 || term.Sides > MaxDieSides {
		return Term{}, errInvalidExpression
	}
	if term.Count > MaxExpressionDice {
		return Term{}, fmt.Errorf("too many dice in %s, at most %d", body, MaxExpressionDice)
	}
	return term, nil
}

// RollExpression parses and rolls an expression with the given roller. A
// single dice group keeps its dice, more groups are summed as parts.
func RollExpression(roller Roller, expr string) (*RollResult, error) {
	parsed, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}

	switch {
	case len(parsed.Dice) == 0:
		return NewRollResult(0, parsed.Bonus, ModeNormal), nil
	case len(parsed.Dice) == 1 && !parsed.Dice[0].Negative:
		return roller.Roll(parsed.Dice[0].Count, parsed.Dice[0].Sides, parsed.Bonus)
	}

	result := NewRollResult(0, parsed.Bonus, ModeNormal)
	for _, term := range parsed.Dice {
		rolled, err := roller.Roll(term.Count, term.Sides, 0)
		if err != nil {
			return nil, err
		}
		total := rolled.Total
		if term.Negative {
			total = -total
		}
		result.AddPart(Part{Formula: term.String(), Total: total})
	}
	return result, nil
}
