package backend

import (
	"context"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

// Image is the input handed to every backend: raw bytes plus optional
// advisory region hints from an upstream spine-segmentation step. Backends
// are free to ignore the hints and must work with none.
type Image struct {
	Bytes     []byte
	MediaType string
	Hints     []model.Region
}

// Adapter is the single contract a detection backend must satisfy to be
// pluggable into the fallback chain. Detect is single-shot and side-effect
// free aside from the external call; failures are tagged with one of the
// sentinel errors in this package.
type Adapter interface {
	Name() string
	Detect(ctx context.Context, img Image) ([]model.RawDetection, error)
}

// spinePrompt instructs a vision model to read movie titles off spines and
// answer with a bare JSON array of strings.
const spinePrompt = `You are analyzing an image of DVD/Blu-ray movie cases stacked on a shelf. Extract ALL visible movie titles from the spines.

INSTRUCTIONS:
1. Examine the image systematically from top to bottom
2. Read the text on each spine, focusing on the main movie title
3. Include titles even if partially obscured or at angles
4. Ignore non-title text like "Blu-ray", "DVD", "4K Ultra HD", studio names, ratings
5. Extract ONLY what you can actually see in the image - do not make assumptions

Return ONLY a JSON array of the movie titles you can see, like this:
["TITLE 1", "TITLE 2", "TITLE 3"]

Do not include any other text, explanations, or formatting.`
