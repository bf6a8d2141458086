package rank

import (
	"sort"

	"github.com/google/uuid"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	defaultMaxResults = 15

	// Each corroborating detection beyond the first nudges the cluster's
	// score up by this much, capped at 1.0.
	supportBoost = 0.1
)

// Ranker turns candidate clusters into the final ordered result list.
type Ranker struct {
	MaxResults int
}

func NewRanker() *Ranker {
	return &Ranker{
		MaxResults: defaultMaxResults,
	}
}

// Rank scores each cluster as
//
//	clamp(0, 1, maxBackendConfidence + 0.1*(supportCount-1))
//
// and returns results sorted descending by score. Ties keep first-seen order
// (stable sort). The list is truncated to MaxResults so downstream UI is not
// flooded with low-value tail candidates.
func (r *Ranker) Rank(clusters []model.CandidateCluster) []model.DetectionResult {
	results := make([]model.DetectionResult, 0, len(clusters))
	for _, cl := range clusters {
		results = append(results, model.DetectionResult{
			ID:         uuid.New().String(),
			Title:      cl.RepresentativeText,
			Confidence: score(cl),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	if r.MaxResults > 0 && len(results) > r.MaxResults {
		results = results[:r.MaxResults]
	}
	return results
}

func score(cl model.CandidateCluster) float64 {
	s := cl.MaxBackendConfidence + supportBoost*float64(cl.SupportCount-1)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
