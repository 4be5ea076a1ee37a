package conversation

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize prepares raw user text for interpretation: Unicode NFC,
// full-width forms narrowed, Devanagari digits mapped to ASCII, lower-cased,
// trimmed, and inner whitespace collapsed.
func Normalize(raw string) string {
	s := width.Narrow.String(norm.NFC.String(raw))
	s = strings.ToLower(NormalizeDigits(s))
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeDigits rewrites Devanagari digits (०-९) as ASCII digits.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '०' && r <= '९' {
			return '0' + (r - '०')
		}
		return r
	}, s)
}

// commandText strips trailing sentence punctuation so "hi!" and "help?"
// match their phrases.
func commandText(text string) string {
	return strings.TrimSpace(strings.TrimRight(text, ".!?,;:। "))
}

// parseChoice reads a bare menu number such as "2" or "2.".
func parseChoice(text string) (int, bool) {
	t := strings.TrimRight(commandText(text), ")")
	if t == "" || len(t) > 3 {
		return 0, false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(t)
	return n, err == nil
}

// tokens splits normalized text into words, keeping Devanagari vowel signs
// attached to their letters.
func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

func isOneOf(text string, phrases ...string) bool {
	t := commandText(text)
	for _, p := range phrases {
		if t == p {
			return true
		}
	}
	return false
}
