package model

// RawDetection is one piece of text returned by a detection backend.
// Ephemeral: created per pipeline invocation, never persisted.
type RawDetection struct {
	Text              string  `json:"text"`
	BackendConfidence float64 `json:"backend_confidence"`
	BackendName       string  `json:"backend_name"`
}

// NormalizedCandidate pairs a raw detection with its cleaned text.
// NormalizedText is non-empty whenever the candidate is retained.
type NormalizedCandidate struct {
	Original       RawDetection `json:"original"`
	NormalizedText string       `json:"normalized_text"`
}

// CandidateCluster groups near-duplicate candidates under a stable
// representative. The representative is the first-seen member's text and is
// never replaced so cluster identity stays stable across merges.
type CandidateCluster struct {
	RepresentativeText   string                `json:"representative_text"`
	Members              []NormalizedCandidate `json:"members"`
	SupportCount         int                   `json:"support_count"`
	MaxBackendConfidence float64               `json:"max_backend_confidence"`
}

// DetectionResult is one entry of the final, ordered output list.
type DetectionResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
}

// BackendOutcome records one backend attempt for diagnostics. Error holds the
// error kind name ("timeout", "auth", ...) and is empty on success.
type BackendOutcome struct {
	BackendName string         `json:"backend_name"`
	Success     bool           `json:"success"`
	Detections  []RawDetection `json:"detections,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Region is an advisory region-of-interest hint in pixel coordinates.
// Backends are free to ignore it; the pipeline works with zero hints.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
