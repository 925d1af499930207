// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package optimizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/trialscout/pkg/types"
)

// mockAI returns a canned response or error and records the last prompt.
type mockAI struct {
	response string
	err      error
	prompt   string
}

func (m *mockAI) Generate(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func TestOptimize(t *testing.T) {
	mock := &mockAI{response: `{"conditions": ["NSCLC"], "interventions": ["osimertinib"], "targets": ["EGFR"], "synonyms": ["Tagrisso"], "suggested_query": "osimertinib EGFR NSCLC"}`}
	c := New(mock)

	profile, err := c.Optimize(context.Background(), "osimertinib lung cancer")
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	want := types.SearchProfile{
		Conditions:     []string{"NSCLC"},
		Interventions:  []string{"osimertinib"},
		Targets:        []string{"EGFR"},
		Synonyms:       []string{"Tagrisso"},
		SuggestedQuery: "osimertinib EGFR NSCLC",
	}
	if profile.SuggestedQuery != want.SuggestedQuery {
		t.Errorf("SuggestedQuery = %q, want %q", profile.SuggestedQuery, want.SuggestedQuery)
	}
	if len(profile.Conditions) != 1 || profile.Conditions[0] != "NSCLC" {
		t.Errorf("Conditions = %v, want %v", profile.Conditions, want.Conditions)
	}
	if !strings.Contains(mock.prompt, "osimertinib lung cancer") {
		t.Errorf("prompt should contain the raw query, got %q", mock.prompt)
	}
}

func TestOptimizeTransportFailure(t *testing.T) {
	c := New(&mockAI{err: errors.New("connection refused")})

	_, err := c.Optimize(context.Background(), "anything")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestOptimizeMalformedResponse(t *testing.T) {
	c := New(&mockAI{response: "I cannot help with that."})

	_, err := c.Optimize(context.Background(), "anything")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestOptimizeEmptySuggestedQueryFallsBack(t *testing.T) {
	c := New(&mockAI{response: `{"conditions": [], "interventions": [], "targets": [], "synonyms": [], "suggested_query": ""}`})

	profile, err := c.Optimize(context.Background(), "raw query text")
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if profile.SuggestedQuery != "raw query text" {
		t.Errorf("SuggestedQuery = %q, want raw query fallback", profile.SuggestedQuery)
	}
}
