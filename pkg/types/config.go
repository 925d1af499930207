// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call
// external services. Every outbound call is bounded by Timeout; there are no
// automatic retries anywhere, so a failed call surfaces immediately and
// re-attempts are user-triggered.
type HTTPConfig struct {
	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trialscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RegistryConfig holds settings for the clinical-trial registry retriever.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the page size requested from the registry (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PubMedConfig holds settings for the literature retriever.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of publications to retrieve (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// AIConfig holds shared settings for components that call a Generative AI
// API: the query optimizer, the relevance scorer, and the synthesis oracles.
type AIConfig struct {
	// Provider selects the backing service: "gemini", "openai", or "claude".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// EnrichConfig holds settings for the background relevance pass.
type EnrichConfig struct {
	// SampleCap is the number of entities per source sent for scoring,
	// taken from the head of each published collection (default 15).
	SampleCap int `json:"sample_cap" yaml:"sample_cap"`
}

// SessionConfig holds settings for session startup.
type SessionConfig struct {
	// DefaultQuery is the query committed when a session starts.
	DefaultQuery string `json:"default_query" yaml:"default_query"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Registry  RegistryConfig `json:"registry" yaml:"registry"`
	PubMed    PubMedConfig   `json:"pubmed" yaml:"pubmed"`
	Optimizer AIConfig       `json:"optimizer" yaml:"optimizer"`
	Scorer    AIConfig       `json:"scorer" yaml:"scorer"`
	Synthesis AIConfig       `json:"synthesis" yaml:"synthesis"`
	Enrich    EnrichConfig   `json:"enrich" yaml:"enrich"`
	Session   SessionConfig  `json:"session" yaml:"session"`
}
