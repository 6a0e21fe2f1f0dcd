// internal/quantity/glyph.go
package quantity

import "math/big"

type glyphEntry struct {
	glyph    rune
	num, den int64
}

// glyphTable lists the vulgar-fraction characters a catalog may use. Every
// entry is a proper fraction in lowest terms and no two share a value.
var glyphTable = []glyphEntry{
	{'½', 1, 2},
	{'⅓', 1, 3}, {'⅔', 2, 3},
	{'¼', 1, 4}, {'¾', 3, 4},
	{'⅕', 1, 5}, {'⅖', 2, 5}, {'⅗', 3, 5}, {'⅘', 4, 5},
	{'⅙', 1, 6}, {'⅚', 5, 6},
	{'⅛', 1, 8}, {'⅜', 3, 8}, {'⅝', 5, 8}, {'⅞', 7, 8},
}

var (
	glyphToValue = make(map[rune]Rational, len(glyphTable))
	valueToGlyph = make(map[string]rune, len(glyphTable))
)

func init() {
	for _, e := range glyphTable {
		v := fromRat(big.NewRat(e.num, e.den))
		glyphToValue[e.glyph] = v
		valueToGlyph[v.String()] = e.glyph
	}
}

// GlyphValue returns the exact value of a fraction glyph.
func GlyphValue(glyph rune) (Rational, bool) {
	v, ok := glyphToValue[glyph]
	return v, ok
}

// GlyphFor returns the glyph whose value is exactly q, if any.
func GlyphFor(q Rational) (rune, bool) {
	if q.Sign() <= 0 || q.IsInt() {
		return 0, false
	}
	g, ok := valueToGlyph[q.String()]
	return g, ok
}

// Glyphs returns the table in display order.
func Glyphs() []rune {
	out := make([]rune, len(glyphTable))
	for i, e := range glyphTable {
		out[i] = e.glyph
	}
	return out
}
