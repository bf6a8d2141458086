// Package enrich looks up movie metadata for a detected title. It is consumed
// by callers of the detection pipeline, never by the pipeline itself.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com"

// Metadata is the subset of OMDB fields the catalog UI displays.
type Metadata struct {
	Title     string `json:"title"`
	Year      int    `json:"year,omitempty"`
	Director  string `json:"director,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Plot      string `json:"plot,omitempty"`
	Rating    string `json:"rating,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether lookups can be attempted at all.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// omdbResponse mirrors OMDB's title-search payload. OMDB reports misses with
// HTTP 200 and Response == "False".
type omdbResponse struct {
	Response string `json:"Response"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Director string `json:"Director"`
	Genre    string `json:"Genre"`
	Plot     string `json:"Plot"`
	Rated    string `json:"Rated"`
	Runtime  string `json:"Runtime"`
	Poster   string `json:"Poster"`
}

// Lookup resolves a title to metadata. Returns (nil, nil) when the title is
// unknown; a miss is not an error.
func (c *Client) Lookup(ctx context.Context, title string) (*Metadata, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("enrichment api key not configured")
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment lookup failed: status %d", resp.StatusCode)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode enrichment response: %w", err)
	}
	if body.Response != "True" {
		return nil, nil
	}

	meta := &Metadata{
		Title:     body.Title,
		Director:  body.Director,
		Genre:     body.Genre,
		Plot:      body.Plot,
		Rating:    body.Rated,
		Runtime:   body.Runtime,
		PosterURL: body.Poster,
	}
	// OMDB years come as "2008" or "2008-2013"; keep the leading year.
	if len(body.Year) >= 4 {
		if y, err := strconv.Atoi(body.Year[:4]); err == nil {
			meta.Year = y
		}
	}
	return meta, nil
}
