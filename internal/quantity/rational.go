// internal/quantity/rational.go
package quantity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Rational is an exact fraction kept in lowest terms with a positive
// denominator. The zero value is 0. Values are never mutated after
// construction, so copies can be shared freely.
type Rational struct {
	rat *big.Rat
}

var (
	ErrZeroDenominator = errors.New("zero denominator")
	ErrInvalidNumber   = errors.New("invalid number")
)

func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	return Rational{rat: big.NewRat(num, den)}, nil
}

// Int returns n/1.
func Int(n int64) Rational {
	return Rational{rat: new(big.Rat).SetInt64(n)}
}

func fromRat(r *big.Rat) Rational {
	return Rational{rat: r}
}

func (q Rational) value() *big.Rat {
	if q.rat == nil {
		return new(big.Rat)
	}
	return q.rat
}

func (q Rational) Mul(o Rational) Rational {
	return fromRat(new(big.Rat).Mul(q.value(), o.value()))
}

func (q Rational) Add(o Rational) Rational {
	return fromRat(new(big.Rat).Add(q.value(), o.value()))
}

func (q Rational) Sub(o Rational) Rational {
	return fromRat(new(big.Rat).Sub(q.value(), o.value()))
}

func (q Rational) Neg() Rational {
	return fromRat(new(big.Rat).Neg(q.value()))
}

func (q Rational) Cmp(o Rational) int {
	return q.value().Cmp(o.value())
}

func (q Rational) Equal(o Rational) bool {
	return q.Cmp(o) == 0
}

func (q Rational) Sign() int {
	return q.value().Sign()
}

func (q Rational) IsInt() bool {
	return q.value().IsInt()
}

// Num returns a copy of the numerator.
func (q Rational) Num() *big.Int {
	return new(big.Int).Set(q.value().Num())
}

// Denom returns a copy of the (positive) denominator.
func (q Rational) Denom() *big.Int {
	return new(big.Int).Set(q.value().Denom())
}

// Floor returns the largest integer not greater than q.
func (q Rational) Floor() *big.Int {
	// big.Int.Div is Euclidean, which floors for a positive divisor.
	return new(big.Int).Div(q.Num(), q.Denom())
}

// String renders "n" for integers and "a/b" otherwise.
func (q Rational) String() string {
	if q.IsInt() {
		return q.value().Num().String()
	}
	return q.value().String()
}

func (q Rational) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON accepts a JSON number or string. Numbers are read from their
// literal text so 0.1 decodes to exactly 1/10.
func (q *Rational) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	v, err := ParseScalar(text)
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// ParseDecimal converts an unsigned decimal literal ("12", "1.5", "0.125")
// from its digit text: the digits without the point over 10^k where k is the
// count of digits after the point. Both sides of the point must be non-empty.
func ParseDecimal(text string) (Rational, error) {
	intPart, fracPart, hasPoint := strings.Cut(text, ".")
	if !isDigits(intPart) || (hasPoint && !isDigits(fracPart)) {
		return Rational{}, fmt.Errorf("%w: decimal %q", ErrInvalidNumber, text)
	}
	num, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Rational{}, fmt.Errorf("%w: decimal %q", ErrInvalidNumber, text)
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	return fromRat(new(big.Rat).SetFrac(num, den)), nil
}

// ParseFraction converts an unsigned "a/b" literal of two digit runs.
func ParseFraction(text string) (Rational, error) {
	numText, denText, ok := strings.Cut(text, "/")
	if !ok || !isDigits(numText) || !isDigits(denText) {
		return Rational{}, fmt.Errorf("%w: fraction %q", ErrInvalidNumber, text)
	}
	num, _ := new(big.Int).SetString(numText, 10)
	den, _ := new(big.Int).SetString(denText, 10)
	if den.Sign() == 0 {
		return Rational{}, fmt.Errorf("%w: fraction %q", ErrZeroDenominator, text)
	}
	return fromRat(new(big.Rat).SetFrac(num, den)), nil
}

// ParseScalar reads a multiplier as typed by a user or stored in a request:
// an optional sign followed by an integer, a decimal or an a/b fraction.
// It never goes through float64.
func ParseScalar(text string) (Rational, error) {
	text = strings.TrimSpace(text)
	negative := false
	switch {
	case strings.HasPrefix(text, "-"):
		negative = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	var (
		v   Rational
		err error
	)
	if strings.Contains(text, "/") {
		v, err = ParseFraction(text)
	} else {
		v, err = ParseDecimal(text)
	}
	if err != nil {
		return Rational{}, err
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
