package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/trialscout/internal/ai"
	"github.com/pdiddy/trialscout/internal/chat"
	"github.com/pdiddy/trialscout/internal/enrich"
	"github.com/pdiddy/trialscout/internal/optimizer"
	"github.com/pdiddy/trialscout/internal/report"
	"github.com/pdiddy/trialscout/internal/retrieve"
	"github.com/pdiddy/trialscout/internal/secrets"
	"github.com/pdiddy/trialscout/internal/session"
	"github.com/pdiddy/trialscout/pkg/types"
)

const defaultUserAgent = "trialscout/0.1"

// loadAppConfig assembles the full configuration from viper (config file plus
// TRIALSCOUT_* environment) and the loaded secrets.
func loadAppConfig() types.AppConfig {
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("registry.max_results", 50)
	viper.SetDefault("pubmed.max_results", 50)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.model", "gemini-2.0-flash")
	viper.SetDefault("ai.max_tokens", 4096)
	viper.SetDefault("enrich.sample_cap", enrich.DefaultSampleCap)
	viper.SetDefault("session.default_query", "non-small cell lung cancer")

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	// One AI block configures all model-backed components; per-component
	// blocks (optimizer, scorer, synthesis) override it when present.
	base := aiConfig("ai")

	return types.AppConfig{
		Registry: types.RegistryConfig{
			HTTPConfig: httpCfg,
			MaxResults: viper.GetInt("registry.max_results"),
		},
		PubMed: types.PubMedConfig{
			HTTPConfig: httpCfg,
			MaxResults: viper.GetInt("pubmed.max_results"),
			APIKey:     secrets.Value(loadedSecrets, "ncbi-api-key", "NCBI_API_KEY"),
		},
		Optimizer: overlayAIConfig(base, "optimizer"),
		Scorer:    overlayAIConfig(base, "scorer"),
		Synthesis: overlayAIConfig(base, "synthesis"),
		Enrich: types.EnrichConfig{
			SampleCap: viper.GetInt("enrich.sample_cap"),
		},
		Session: types.SessionConfig{
			DefaultQuery: viper.GetString("session.default_query"),
		},
	}
}

// aiConfig reads one AI config block and resolves its API key from the
// environment or .secrets/ by provider.
func aiConfig(block string) types.AIConfig {
	cfg := types.AIConfig{
		Provider:  viper.GetString(block + ".provider"),
		Model:     viper.GetString(block + ".model"),
		BaseURL:   viper.GetString(block + ".base_url"),
		MaxTokens: viper.GetInt(block + ".max_tokens"),
	}
	cfg.APIKey = providerKey(cfg.Provider)
	return cfg
}

// overlayAIConfig applies a per-component block on top of the shared AI
// config. Only set fields override.
func overlayAIConfig(base types.AIConfig, block string) types.AIConfig {
	cfg := base
	if v := viper.GetString(block + ".provider"); v != "" {
		cfg.Provider = v
		cfg.APIKey = providerKey(v)
	}
	if v := viper.GetString(block + ".model"); v != "" {
		cfg.Model = v
	}
	if v := viper.GetString(block + ".base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetInt(block + ".max_tokens"); v != 0 {
		cfg.MaxTokens = v
	}
	return cfg
}

// providerKey resolves the API key for a provider: environment first, then
// the .secrets/ directory.
func providerKey(provider string) string {
	switch provider {
	case "gemini":
		return secrets.Value(loadedSecrets, "gemini-api-key", "GEMINI_API_KEY")
	case "openai":
		return secrets.Value(loadedSecrets, "openai-api-key", "OPENAI_API_KEY")
	case "claude":
		return secrets.Value(loadedSecrets, "anthropic-api-key", "ANTHROPIC_API_KEY")
	}
	return ""
}

// newCoordinator wires a full session coordinator from config: model clients
// for the optimizer, scorer, and synthesis oracles, plus both retrievers.
func newCoordinator(ctx context.Context, cfg types.AppConfig, w io.Writer) (*session.Coordinator, error) {
	optClient, err := ai.New(ctx, cfg.Optimizer)
	if err != nil {
		return nil, fmt.Errorf("optimizer client: %w", err)
	}
	scorerClient, err := ai.New(ctx, cfg.Scorer)
	if err != nil {
		return nil, fmt.Errorf("scorer client: %w", err)
	}
	synthClient, err := ai.New(ctx, cfg.Synthesis)
	if err != nil {
		return nil, fmt.Errorf("synthesis client: %w", err)
	}

	oracle := report.NewOracle(synthClient)
	oracles := session.Oracles{
		Audit:        oracle,
		Compare:      oracle,
		Pipeline:     oracle,
		Architecture: oracle,
		Assistant:    chat.New(synthClient),
	}

	return session.NewCoordinator(
		session.New(cfg.Session.DefaultQuery),
		optimizer.New(optClient),
		retrieve.NewRegistryClient(cfg.Registry),
		retrieve.NewPubMedClient(cfg.PubMed),
		enrich.NewScorer(scorerClient),
		oracles,
		cfg.Enrich,
		w,
	), nil
}
