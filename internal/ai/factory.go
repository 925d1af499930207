// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/trialscout/pkg/types"
)

// New builds a Client for the configured provider: "gemini", "openai", or
// "claude".
func New(ctx context.Context, cfg types.AIConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil
	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %q", cfg.Provider)
	}
}
