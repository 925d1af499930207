// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai provides provider-agnostic access to generative text models.
// The query optimizer, the relevance scorer, and the synthesis oracles all
// speak to their upstream service through the Client interface; concrete
// clients exist for Gemini, OpenAI-compatible endpoints, and Claude.
package ai

import "context"

// Client generates a text completion for a prompt. Implementations make a
// single attempt per call; retry policy belongs to the caller (and the
// search core has none).
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// defaultMaxTokens bounds responses when the configuration leaves MaxTokens unset.
const defaultMaxTokens = 4096
