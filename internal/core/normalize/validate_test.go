package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlausibleTitle_RejectsPurelyNumeric(t *testing.T) {
	assert.False(t, IsPlausibleTitle("7"))
	assert.False(t, IsPlausibleTitle("2001"))
}

func TestIsPlausibleTitle_RejectsTooShortOrLong(t *testing.T) {
	assert.False(t, IsPlausibleTitle(""))
	assert.False(t, IsPlausibleTitle("X"))
	assert.False(t, IsPlausibleTitle(strings.Repeat("a", 121)))
	assert.True(t, IsPlausibleTitle(strings.Repeat("a", 120)))
}

func TestIsPlausibleTitle_RejectsStopWords(t *testing.T) {
	for _, w := range []string{"AND", "or", "Of", "in", "ON", "AT", "TO", "FOR", "WITH", "BY"} {
		assert.False(t, IsPlausibleTitle(w), "stop word %q should be rejected", w)
	}
}

func TestIsPlausibleTitle_RejectsNoAlphabetic(t *testing.T) {
	assert.False(t, IsPlausibleTitle("12-34"))
	assert.False(t, IsPlausibleTitle("(...)"))
}

func TestIsPlausibleTitle_Permissive(t *testing.T) {
	// False negatives are worse than false positives: dedup and ranking
	// discard low-value candidates later.
	assert.True(t, IsPlausibleTitle("Up"))
	assert.True(t, IsPlausibleTitle("Se7en"))
	assert.True(t, IsPlausibleTitle("2001: A Space Odyssey"))
	assert.True(t, IsPlausibleTitle("It"))
	assert.True(t, IsPlausibleTitle("Withnail & I"))
}
