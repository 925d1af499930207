// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient calls the OpenAI chat-completion API, or any
// OpenAI-compatible server when a base URL is configured.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient builds an OpenAI client. baseURL may be empty for the
// hosted API.
func NewOpenAIClient(apiKey, model, baseURL string, maxTokens int) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends the prompt as a single user message and returns the first
// choice's content.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
