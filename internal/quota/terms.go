package quota

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseTerms tokenizes a free-text payment terms string ("90/120/150",
// "30, 60, 90", "30-60") into day counts. Tokens that do not parse as
// positive integers are dropped silently: buyers type these by hand and
// a stray token must not block order entry. Order and duplicates of the
// surviving tokens are preserved.
func ParseTerms(raw string) []int {
	tokens := strings.FieldsFunc(raw, isTermSeparator)
	var terms []int
	for _, tok := range tokens {
		days, err := strconv.Atoi(tok)
		if err != nil || days <= 0 {
			continue
		}
		terms = append(terms, days)
	}
	return terms
}

func isTermSeparator(r rune) bool {
	return r == '/' || r == ',' || r == '-' || unicode.IsSpace(r)
}
