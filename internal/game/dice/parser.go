package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Limits keep a typo in content or config from rolling millions of dice.
const (
	MaxCount = 100
	MaxSides = 1000
)

// Expression is a parsed "NdS+M" roll. After a successful Parse,
// 1 <= Count <= MaxCount and 1 <= Sides <= MaxSides.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

// Parse reads "d20", "2d10", "2d10+3" or "4d8-2". Case and surrounding
// space are ignored.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	countStr, rest, ok := strings.Cut(s, "d")
	if !ok {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", expr)
	}

	e := Expression{Count: 1}
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 || n > MaxCount {
			return Expression{}, fmt.Errorf("dice: die count in %q must be 1-%d", expr, MaxCount)
		}
		e.Count = n
	}

	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i > 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 1 || sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be 1-%d", expr, MaxSides)
	}
	e.Sides = sides

	if modStr != "" {
		if e.Modifier, err = strconv.Atoi(modStr); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
	}
	return e, nil
}

// MustParse parses expr and panics on error. Intended for package-level defaults.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// String renders the canonical form, e.g. "1d20" or "4d8-2".
func (e Expression) String() string {
	switch {
	case e.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Modifier)
	case e.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Modifier)
	}
	return fmt.Sprintf("%dd%d", e.Count, e.Sides)
}

// UnmarshalText lets yaml and mapstructure decode an Expression from a
// string field.
func (e *Expression) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalText renders the canonical form.
func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
