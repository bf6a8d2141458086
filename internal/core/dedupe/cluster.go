package dedupe

import (
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const defaultMergeThreshold = 0.85

// Clusterer groups near-duplicate candidates by edit-distance similarity.
type Clusterer struct {
	MergeThreshold float64
}

func NewClusterer() *Clusterer {
	return &Clusterer{
		MergeThreshold: defaultMergeThreshold,
	}
}

// Cluster performs greedy incremental clustering in candidate order. Each
// candidate joins the existing cluster whose representative it is most similar
// to, provided that similarity reaches the merge threshold; otherwise it opens
// a new cluster. The representative is the first-seen member and is never
// replaced. O(n*k) with k the running cluster count; n is tens per image, not
// thousands.
//
// Output invariant: no two cluster representatives reach the merge threshold
// against each other.
func (c *Clusterer) Cluster(candidates []model.NormalizedCandidate) []model.CandidateCluster {
	var clusters []model.CandidateCluster

	for _, cand := range candidates {
		best := -1
		bestSim := 0.0
		for i := range clusters {
			sim := Similarity(cand.NormalizedText, clusters[i].RepresentativeText)
			if sim > bestSim {
				bestSim = sim
				best = i
			}
		}

		if best >= 0 && bestSim >= c.MergeThreshold {
			cl := &clusters[best]
			cl.Members = append(cl.Members, cand)
			cl.SupportCount++
			if cand.Original.BackendConfidence > cl.MaxBackendConfidence {
				cl.MaxBackendConfidence = cand.Original.BackendConfidence
			}
			continue
		}

		clusters = append(clusters, model.CandidateCluster{
			RepresentativeText:   cand.NormalizedText,
			Members:              []model.NormalizedCandidate{cand},
			SupportCount:         1,
			MaxBackendConfidence: cand.Original.BackendConfidence,
		})
	}

	return clusters
}
