// internal/quantity/format.go
package quantity

import (
	"math/big"
	"strings"
)

// Format renders q as a mixed number, using a glyph for the fractional part
// when one exists: "2", "1 ½", "¾", "1 2/7", "1/7".
//
// The mixed form is two tokens, which Parse reads as the quantity "1"
// followed by a description starting with the glyph. Output that will be
// fed back into Parse must be rendered with Canonical instead.
func Format(q Rational) string {
	if q.Sign() < 0 {
		return "-" + Format(q.Neg())
	}
	if q.IsInt() {
		return q.String()
	}

	whole := q.Floor()
	remainder := q.Sub(fromRat(new(big.Rat).SetInt(whole)))

	frac := remainder.String()
	if g, ok := GlyphFor(remainder); ok {
		frac = string(g)
	}
	if whole.Sign() == 0 {
		return frac
	}
	return whole.String() + " " + frac
}

// Canonical renders q as a single token that Parse accepts: "n" or "a/b".
func Canonical(q Rational) string {
	return q.String()
}

// FormatItem renders a parsed item back into a catalog-style line.
func FormatItem(item Item) string {
	if !item.HasQuantity {
		return item.Raw
	}
	if item.Description == "" {
		return Format(item.Quantity)
	}
	return strings.Join([]string{Format(item.Quantity), item.Description}, " ")
}
