package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger. It provides the random generators the
// spell code consumes and logs every roll at debug level.
//
// A Roller is not safe for concurrent use unless its Source is.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Random2 returns a uniform int in [0, n). Returns 0 when n <= 1.
func (r *Roller) Random2(n int) int {
	if n <= 1 {
		return 0
	}
	return r.src.Intn(n)
}

// RandomRange returns a uniform int in [lo, hi], inclusive on both ends.
//
// Precondition: lo <= hi.
func (r *Roller) RandomRange(lo, hi int) int {
	v := lo + r.Random2(hi-lo+1)
	r.logger.Debug("random range", zap.Int("lo", lo), zap.Int("hi", hi), zap.Int("value", v))
	return v
}

// Random2Avg averages rolls draws of Random2 around n, producing a result in
// [0, n) that clusters towards the middle as rolls grows.
//
// Precondition: rolls >= 1.
func (r *Roller) Random2Avg(n, rolls int) int {
	if rolls < 1 {
		rolls = 1
	}
	sum := r.Random2(n)
	for i := 1; i < rolls; i++ {
		sum += r.Random2(n + 1)
	}
	return sum / rolls
}

// RollDice rolls num dice of size faces and returns the sum. Returns 0 when
// either argument is non-positive.
func (r *Roller) RollDice(num, size int) int {
	if num <= 0 || size <= 0 {
		return 0
	}
	total := 0
	for i := 0; i < num; i++ {
		total += 1 + r.Random2(size)
	}
	r.logger.Debug("dice roll",
		zap.Int("num", num),
		zap.Int("size", size),
		zap.Int("total", total),
	)
	return total
}

// OneChanceIn reports true with probability 1/n. Always true when n <= 1.
func (r *Roller) OneChanceIn(n int) bool {
	return r.Random2(n) == 0
}

// XChanceInY reports true with probability x/y.
func (r *Roller) XChanceInY(x, y int) bool {
	if x <= 0 {
		return false
	}
	if x >= y {
		return true
	}
	return r.Random2(y) < x
}

// Binomial counts successes over trials independent draws that each succeed
// with probability num/den.
func (r *Roller) Binomial(trials, num, den int) int {
	successes := 0
	for i := 0; i < trials; i++ {
		if r.XChanceInY(num, den) {
			successes++
		}
	}
	return successes
}
