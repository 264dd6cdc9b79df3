package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Upper bounds on a parsed expression. Scripts can pass arbitrary text to
// the parser, so a roll's size must stay small.
const (
	MaxCount = 100
	MaxSides = 1000
)

// Expression is a parsed damage expression.
//
// Invariant: Count == 0 (flat damage) or 1 <= Count <= MaxCount with
// 2 <= Sides <= MaxSides.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Flat reports whether the expression rolls no dice.
func (e Expression) Flat() bool {
	return e.Count == 0
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() int {
	return e.Count + e.Modifier
}

// Max returns the largest total the expression can produce.
func (e Expression) Max() int {
	return e.Count*e.Sides + e.Modifier
}

// Parse parses "d20", "2d6", "2d6+3", "4d8-2" or a flat integer such as "10".
//
// Postcondition: returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	s := strings.ToLower(raw)

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: %q is neither a dice expression nor an integer", raw)
		}
		return Expression{Raw: raw, Modifier: n}, nil
	}

	count := 1
	if dIdx > 0 {
		n, err := strconv.Atoi(s[:dIdx])
		if err != nil || n <= 0 || n > MaxCount {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q (1..%d)", raw, MaxCount)
		}
		count = n
	}

	rest := s[dIdx+1:]
	sidesStr, modStr := rest, ""
	// A sign at index 0 would be part of the sides, which Atoi rejects below.
	if i := strings.IndexAny(rest[min(1, len(rest)):], "+-"); i >= 0 {
		sidesStr, modStr = rest[:i+1], rest[i+1:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 || sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q (2..%d)", raw, MaxSides)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}
	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParse parses expr and panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
