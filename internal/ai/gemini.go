// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiClient builds a Gemini client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &GeminiClient{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetMaxOutputTokens(c.maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response candidates or content")
	}
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", fmt.Errorf("unexpected response part type")
}

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
