package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

func candidate(text string, confidence float64, backendName string) model.NormalizedCandidate {
	return model.NormalizedCandidate{
		Original: model.RawDetection{
			Text:              text,
			BackendConfidence: confidence,
			BackendName:       backendName,
		},
		NormalizedText: text,
	}
}

func TestCluster_MergesNearDuplicates(t *testing.T) {
	// "THE DARK KNIGHT" and its OCR-mangled twin merge; "SNATCH" stays apart.
	candidates := []model.NormalizedCandidate{
		candidate("THE DARK KNIGHT", 0.95, "claude"),
		candidate("the dark knght", 0.90, "google_vision"),
		candidate("SNATCH", 0.90, "claude"),
	}

	clusters := NewClusterer().Cluster(candidates)

	assert.Len(t, clusters, 2)
	assert.Equal(t, "THE DARK KNIGHT", clusters[0].RepresentativeText)
	assert.Equal(t, 2, clusters[0].SupportCount)
	assert.Len(t, clusters[0].Members, 2)
	assert.Equal(t, 1, clusters[1].SupportCount)
}

func TestCluster_RepresentativeIsFirstSeen(t *testing.T) {
	candidates := []model.NormalizedCandidate{
		candidate("the dark knght", 0.60, "tesseract"),
		candidate("THE DARK KNIGHT", 0.95, "claude"),
	}

	clusters := NewClusterer().Cluster(candidates)

	// The higher-confidence member raises the cluster confidence but never
	// replaces the representative; cluster identity stays stable.
	assert.Len(t, clusters, 1)
	assert.Equal(t, "the dark knght", clusters[0].RepresentativeText)
	assert.Equal(t, 0.95, clusters[0].MaxBackendConfidence)
}

func TestCluster_TracksMaxBackendConfidence(t *testing.T) {
	candidates := []model.NormalizedCandidate{
		candidate("GLORY", 0.70, "tesseract"),
		candidate("GLORY", 0.95, "claude"),
		candidate("GLORY", 0.80, "google_vision"),
	}

	clusters := NewClusterer().Cluster(candidates)

	assert.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].SupportCount)
	assert.Equal(t, 0.95, clusters[0].MaxBackendConfidence)
}

func TestCluster_MergeInvariant(t *testing.T) {
	// No two output representatives may reach the merge threshold.
	candidates := []model.NormalizedCandidate{
		candidate("THE DARK KNIGHT", 0.95, "claude"),
		candidate("the dark knght", 0.90, "google_vision"),
		candidate("THE DARK KNIGHT RISES", 0.92, "claude"),
		candidate("SNATCH", 0.90, "claude"),
		candidate("SNATCHED", 0.60, "tesseract"),
		candidate("GLORY", 0.85, "google_vision"),
	}

	c := NewClusterer()
	clusters := c.Cluster(candidates)

	for i := range clusters {
		for j := i + 1; j < len(clusters); j++ {
			sim := Similarity(clusters[i].RepresentativeText, clusters[j].RepresentativeText)
			assert.Less(t, sim, c.MergeThreshold,
				"clusters %q and %q are near-duplicates", clusters[i].RepresentativeText, clusters[j].RepresentativeText)
		}
	}
}

func TestCluster_CustomThreshold(t *testing.T) {
	candidates := []model.NormalizedCandidate{
		candidate("HEAT", 0.9, "claude"),
		candidate("HEAR", 0.9, "claude"),
	}

	strict := &Clusterer{MergeThreshold: 0.9}
	assert.Len(t, strict.Cluster(candidates), 2)

	loose := &Clusterer{MergeThreshold: 0.7}
	assert.Len(t, loose.Cluster(candidates), 1)
}

func TestCluster_Empty(t *testing.T) {
	assert.Empty(t, NewClusterer().Cluster(nil))
}
