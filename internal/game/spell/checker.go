package spell

// Randomizer is the slice of the dice roller the checker needs.
type Randomizer interface {
	Random2(n int) int
}

// Checker rolls cast preconditions and upkeep failure severity.
type Checker interface {
	// Passes reports whether a cast of id at power succeeds its fail check.
	Passes(id ID, power int) bool
	// Severity returns how badly a failure roll for id went. 0 means no failure.
	Severity(id ID, upkeep bool) int
}

// RollChecker is the default Checker: a percentile roll against the spell's
// failure rate, which falls as power rises.
type RollChecker struct {
	book *Book
	rng  Randomizer
}

// NewRollChecker returns a RollChecker reading failure rates from book.
//
// Precondition: book and rng must be non-nil.
func NewRollChecker(book *Book, rng Randomizer) *RollChecker {
	return &RollChecker{book: book, rng: rng}
}

// FailureRate returns the percent chance that casting id at power fails.
//
// Postcondition: result is in [0, 100].
func (c *RollChecker) FailureRate(id ID, power int) int {
	def, ok := c.book.Get(id)
	if !ok {
		return 100
	}
	return clampPercent(def.BaseFailure - power/5)
}

// Passes rolls d100 against the failure rate.
func (c *RollChecker) Passes(id ID, power int) bool {
	return c.rng.Random2(100) >= c.FailureRate(id, power)
}

// Severity rolls d100 against the failure rate and returns the margin of
// failure, or 0 when the roll succeeded.
func (c *RollChecker) Severity(id ID, upkeep bool) int {
	rate := c.FailureRate(id, c.book.Power(id))
	if def, ok := c.book.Get(id); ok && upkeep && def.UpkeepFailure > 0 {
		rate = def.UpkeepFailure
	}
	roll := c.rng.Random2(100)
	if roll >= rate {
		return 0
	}
	return rate - roll
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
