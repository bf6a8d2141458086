package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type DetectionConfig struct {
	// Backends lists adapter names in fallback order.
	Backends              []string `toml:"backends"`
	MergeThreshold        float64  `toml:"merge_threshold"`
	MinSufficient         int      `toml:"min_sufficient"`
	MaxResults            int      `toml:"max_results"`
	BackendTimeoutSeconds int      `toml:"backend_timeout_seconds"`
	OverallTimeoutSeconds int      `toml:"overall_timeout_seconds"`
}

type AnthropicConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type GoogleVisionConfig struct {
	APIKey string `toml:"api_key"`
}

type TesseractConfig struct {
	Languages []string `toml:"languages"`
}

type EnrichmentConfig struct {
	OMDBAPIKey string `toml:"omdb_api_key"`
	BaseURL    string `toml:"base_url"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Detection    DetectionConfig    `toml:"detection"`
	Anthropic    AnthropicConfig    `toml:"anthropic"`
	OpenAI       OpenAIConfig       `toml:"openai"`
	Gemini       GeminiConfig       `toml:"gemini"`
	GoogleVision GoogleVisionConfig `toml:"google_vision"`
	Tesseract    TesseractConfig    `toml:"tesseract"`
	Enrichment   EnrichmentConfig   `toml:"enrichment"`
	Server       ServerConfig       `toml:"server"`
}

// Default returns the configuration used when no file is present: Claude
// first, Cloud Vision as fallback, local OCR last.
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			Backends:              []string{"claude", "google_vision", "tesseract"},
			MergeThreshold:        0.85,
			MinSufficient:         3,
			MaxResults:            15,
			BackendTimeoutSeconds: 30,
			OverallTimeoutSeconds: 90,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-3-5-sonnet-20241022",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
		Tesseract: TesseractConfig{
			Languages: []string{"eng"},
		},
		Enrichment: EnrichmentConfig{
			BaseURL: "https://www.omdbapi.com",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and the port from the environment. Env always
// wins over the file so keys never have to live on disk.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_VISION_API_KEY"); v != "" {
		c.GoogleVision.APIKey = v
	}
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		c.Enrichment.OMDBAPIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Detection.BackendTimeoutSeconds) * time.Second
}

func (c *Config) OverallTimeout() time.Duration {
	return time.Duration(c.Detection.OverallTimeoutSeconds) * time.Second
}
