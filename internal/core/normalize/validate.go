package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minTitleLength = 2
	maxTitleLength = 120
)

// stopWords is a closed set of bare function words that are never titles on
// their own.
var stopWords = map[string]struct{}{
	"AND": {}, "OR": {}, "OF": {}, "IN": {}, "ON": {},
	"AT": {}, "TO": {}, "FOR": {}, "WITH": {}, "BY": {},
}

// IsPlausibleTitle reports whether a normalized string could be a movie title.
// Intentionally permissive: downstream deduplication and ranking discard
// low-value candidates, so a false negative here loses a real title while a
// false positive costs little.
func IsPlausibleTitle(normalized string) bool {
	length := utf8.RuneCountInString(normalized)
	if length < minTitleLength || length > maxTitleLength {
		return false
	}
	if _, stop := stopWords[strings.ToUpper(normalized)]; stop {
		return false
	}

	hasLetter := false
	allDigits := true
	for _, r := range normalized {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}
	if allDigits {
		return false
	}
	return hasLetter
}
