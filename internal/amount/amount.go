// Package amount holds the whole-unit decimal amounts entered by users and
// their fixed 18-decimal base-unit representation used on-chain.
package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the base-unit scale: 1 whole unit = 10^Decimals base units.
const Decimals = 18

var decimalPattern = regexp.MustCompile(`^(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)

// InputError reports text that is not a valid non-negative decimal amount.
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

// Amount is a validated, non-negative whole-unit amount that is exactly
// representable in base units. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// Parse validates whole-unit decimal text such as "1.5" or ".25".
// Surrounding whitespace is ignored. Signs, exponents and more than
// Decimals significant fractional digits are rejected.
func Parse(text string) (Amount, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Zero, &InputError{Input: text, Reason: "empty"}
	}
	if !decimalPattern.MatchString(s) {
		return Zero, &InputError{Input: text, Reason: "not a non-negative decimal number"}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, &InputError{Input: text, Reason: err.Error()}
	}
	if !d.Shift(Decimals).IsInteger() {
		return Zero, &InputError{Input: text, Reason: fmt.Sprintf("more than %d decimal places", Decimals)}
	}
	return Amount{d: d}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for constants and tests.
func MustParse(text string) Amount {
	a, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBase converts a base-unit integer back to whole units.
// A nil or negative value is treated as zero.
func FromBase(base *big.Int) Amount {
	if base == nil || base.Sign() < 0 {
		return Zero
	}
	return Amount{d: decimal.NewFromBigInt(base, -Decimals)}
}

// Base returns the amount in base units (whole units × 10^18).
func (a Amount) Base() *big.Int {
	return a.d.Shift(Decimals).BigInt()
}

// String returns normalized whole-unit text without trailing zeros, e.g. "2" or "1.5".
func (a Amount) String() string {
	return a.d.String()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// Equal reports whether a and b denote the same quantity.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}
