// Package dice provides the randomness abstraction used by spell casting,
// upkeep rolls and bulk duration sweeps.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for every roll in the game.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(n int) int

// Intn calls f.
func (f SourceFunc) Intn(n int) int { return f(n) }

// RollResult records one evaluation of an Expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d10: 4+5 = 9". A modifier is appended as a
// signed term.
func (r RollResult) String() string {
	terms := make([]string, 0, len(r.Dice)+1)
	for _, d := range r.Dice {
		terms = append(terms, fmt.Sprint(d))
	}
	sum := strings.Join(terms, "+")
	if r.Modifier != 0 {
		sum += fmt.Sprintf("%+d", r.Modifier)
	}
	if sum == "" {
		sum = "0"
	}
	expr := r.Expression
	if expr == "" {
		expr = "roll"
	}
	return fmt.Sprintf("%s: %s = %d", expr, sum, r.Total())
}

// Min is the lowest total expr can roll.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max is the highest total expr can roll.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and every die is in [1, Sides].
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.String(), Dice: rolled, Modifier: expr.Modifier}
}
