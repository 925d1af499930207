// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeClient calls the Anthropic Messages API.
type ClaudeClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeClient builds a Claude client. baseURL may be empty for the
// hosted API.
func NewClaudeClient(apiKey, model, baseURL string, maxTokens int) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ClaudeClient{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends the prompt as a single user message and returns the first
// content block's text.
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", fmt.Errorf("no response content")
	}
	return *resp.Content[0].Text, nil
}
