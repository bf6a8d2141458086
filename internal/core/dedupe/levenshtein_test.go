package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("snatch", "snatch"))
	assert.Equal(t, 1, Levenshtein("knight", "knght"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, Levenshtein("", "glory"))
	assert.Equal(t, 5, Levenshtein("glory", ""))
	assert.Equal(t, 1, Levenshtein("heat", "hear"))
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("SNATCH", "snatch"))
}

func TestSimilarity_NormalizedByLongerString(t *testing.T) {
	// "the dark knight" (15) vs "the dark knght" (14): one deletion.
	sim := Similarity("THE DARK KNIGHT", "the dark knght")
	assert.InDelta(t, 1.0-1.0/15.0, sim, 1e-9)
	assert.GreaterOrEqual(t, sim, 0.85)
}

func TestSimilarity_Distant(t *testing.T) {
	assert.Less(t, Similarity("SNATCH", "THE DARK KNIGHT"), 0.5)
}

func TestSimilarity_BothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
}
