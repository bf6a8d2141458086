package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// parseTitleArray cleans and unmarshals a model response expected to be a
// JSON array of title strings. It handles common LLM quirks like surrounding
// markdown or extra text by slicing from the first '[' to the last ']'.
func parseTitleArray(response string) ([]string, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var titles []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &titles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal title array: %w", err)
	}

	out := titles[:0]
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

var (
	bulletPrefix = regexp.MustCompile(`^[-*•]\s*`)
	numberPrefix = regexp.MustCompile(`^\d+\.\s*`)
	quoteEdge    = regexp.MustCompile("^[\"'`]|[\"'`]$")
	metaLine     = regexp.MustCompile(`(?i)^(here|the following|movies?|titles?|dvd|blu-?ray|collection|visible|spines?|section|total|count|image|processing)`)
)

// parseTitleLines extracts titles from a free-text model response, used when
// the model ignored the JSON instruction. Bullets, numbering, and quoting are
// stripped; meta commentary lines are skipped.
func parseTitleLines(response string, limit int) []string {
	var titles []string
	for _, line := range strings.Split(response, "\n") {
		cleaned := strings.TrimSpace(line)
		cleaned = bulletPrefix.ReplaceAllString(cleaned, "")
		cleaned = numberPrefix.ReplaceAllString(cleaned, "")
		cleaned = quoteEdge.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)

		if len(cleaned) < 2 || len(cleaned) > 100 {
			continue
		}
		if metaLine.MatchString(cleaned) {
			continue
		}
		if strings.ContainsAny(cleaned, "[]{}") {
			continue
		}

		titles = append(titles, cleaned)
		if limit > 0 && len(titles) >= limit {
			break
		}
	}
	return titles
}
