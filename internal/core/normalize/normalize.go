package normalize

import (
	"strings"
	"unicode"
)

// noiseTokens are spine text fragments that are never part of a movie title:
// media formats, certifications, and edition markers. Matched as whole words,
// case-insensitively.
var noiseTokens = map[string]struct{}{
	// media formats
	"DVD":     {},
	"BLU-RAY": {},
	"4K":      {},
	"UHD":     {},
	"DIGITAL": {},
	"DISC":    {},
	"COPY":    {},
	// certifications
	"G":       {},
	"PG":      {},
	"PG-13":   {},
	"R":       {},
	"NC-17":   {},
	"RATED":   {},
	"UNRATED": {},
	// edition markers
	"SPECIAL":    {},
	"EDITION":    {},
	"EXTENDED":   {},
	"DIRECTOR'S": {},
	"CUT":        {},
	"VERSION":    {},
}

// Normalize cleans one raw detected string: collapses whitespace, strips
// characters outside the title allow-list, and drops known non-title tokens.
// The result may be empty; callers must handle that.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
//
// It deliberately does not correct OCR character confusions (0→O, 5→S):
// titles like "2001: A Space Odyssey" or "Se7en" legitimately contain digits.
// Any such correction belongs in a backend's own pre-processing.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if allowed(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, noise := noiseTokens[strings.ToUpper(w)]; noise {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func allowed(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
		return true
	}
	switch r {
	case '&', ':', '\'', '-', '.', ',', '(', ')':
		return true
	}
	return false
}
