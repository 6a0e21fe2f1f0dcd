// internal/quantity/parse.go
package quantity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrMalformedQuantity marks a leading token that looks numeric but is not a
// valid quantity, e.g. "3/0" or "1.".
var ErrMalformedQuantity = errors.New("malformed quantity")

type MalformedQuantityError struct {
	Line  string
	Token string
	Err   error
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("malformed quantity %q in %q: %v", e.Token, e.Line, e.Err)
}

func (e *MalformedQuantityError) Unwrap() []error {
	return []error{ErrMalformedQuantity, e.Err}
}

// Item is a catalog line split into its leading quantity and description.
// When HasQuantity is false the line carried no quantity ("al gusto") and
// Raw is meant to be used verbatim.
type Item struct {
	Raw         string
	Quantity    Rational
	Description string
	HasQuantity bool
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	tokenGlyph
	tokenFraction
	tokenDecimal
	tokenInteger
)

// Parse splits line into a leading quantity token and the description that
// follows it. Recognised tokens, in priority order: a fraction glyph, a/b,
// a decimal literal, an integer. The token must be followed by whitespace.
func Parse(line string) (Item, error) {
	unparsed := Item{Raw: line}

	if line == "" {
		return unparsed, nil
	}

	// Glyph token.
	first, size := utf8.DecodeRuneInString(line)
	if v, ok := GlyphValue(first); ok {
		desc, ok := descriptionAfter(line, size)
		if !ok {
			return unparsed, nil
		}
		return Item{Raw: line, Quantity: v, Description: desc, HasQuantity: true}, nil
	}

	// Numeric run: digits, '.' and '/'.
	end := 0
	for end < len(line) && isNumericByte(line[end]) {
		end++
	}
	token := line[:end]
	if !strings.ContainsAny(token, "0123456789") {
		return unparsed, nil
	}
	desc, ok := descriptionAfter(line, end)
	if !ok {
		return unparsed, nil
	}

	var (
		v   Rational
		err error
	)
	switch classify(token) {
	case tokenFraction:
		v, err = ParseFraction(token)
	case tokenDecimal, tokenInteger:
		v, err = ParseDecimal(token)
	default:
		err = ErrInvalidNumber
	}
	if err != nil {
		return unparsed, &MalformedQuantityError{Line: line, Token: token, Err: err}
	}
	return Item{Raw: line, Quantity: v, Description: desc, HasQuantity: true}, nil
}

func classify(token string) tokenKind {
	if n, d, ok := strings.Cut(token, "/"); ok {
		if isDigits(n) && isDigits(d) {
			return tokenFraction
		}
		return tokenNone
	}
	if isDigits(token) {
		return tokenInteger
	}
	if i, f, ok := strings.Cut(token, "."); ok && isDigits(i) && isDigits(f) {
		return tokenDecimal
	}
	return tokenNone
}

// descriptionAfter requires at least one whitespace rune at offset and
// returns what follows the whitespace run.
func descriptionAfter(line string, offset int) (string, bool) {
	rest := line[offset:]
	r, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsSpace(r) {
		return "", false
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace), true
}

func isNumericByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '/'
}
