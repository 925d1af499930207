// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package optimizer expands a raw free-text query into a structured search
// profile via an external semantic service. One call per search commit; a
// failure aborts the whole foreground commit, so there is no retry here.
//
// See docs/ARCHITECTURE.md § Query Optimizer.
package optimizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/pdiddy/trialscout/internal/ai"
	"github.com/pdiddy/trialscout/pkg/types"
)

// ErrUpstreamUnavailable marks any transport, service, or response-format
// failure of the semantic optimizer. Callers treat it as fatal for the
// current commit and keep stale results visible.
var ErrUpstreamUnavailable = errors.New("query optimizer unavailable")

// optimizePromptTmpl instructs the model to expand a clinical search query
// into structured vocabulary plus one rewritten registry query.
var optimizePromptTmpl = template.Must(template.New("optimize").Parse(`You are a biomedical search query optimizer. Expand the following free-text query about clinical research into structured search vocabulary.

Identify:
- conditions: disease or condition terms, including standard nomenclature
- interventions: drug, device, or procedure terms
- targets: molecular targets (gene symbols, pathways, receptors)
- synonyms: alternate spellings, abbreviations, and trade names for any of the above
- suggested_query: a single rewritten query string optimized for a clinical-trial registry search

Respond with a JSON object containing exactly the keys "conditions", "interventions", "targets", "synonyms" (arrays of strings) and "suggested_query" (string). Do not include any text outside the JSON object.

Example response:
{"conditions": ["non-small cell lung cancer", "NSCLC"], "interventions": ["osimertinib"], "targets": ["EGFR"], "synonyms": ["Tagrisso"], "suggested_query": "osimertinib EGFR non-small cell lung cancer"}

Query:
{{.Query}}
`))

// Client produces a SearchProfile from a raw query.
type Client struct {
	ai ai.Client
}

// New builds an optimizer client over the given model client.
func New(aiClient ai.Client) *Client {
	return &Client{ai: aiClient}
}

// profileResponse mirrors the JSON contract of the optimizer prompt.
type profileResponse struct {
	Conditions     []string `json:"conditions"`
	Interventions  []string `json:"interventions"`
	Targets        []string `json:"targets"`
	Synonyms       []string `json:"synonyms"`
	SuggestedQuery string   `json:"suggested_query"`
}

// Optimize expands rawQuery into a SearchProfile. Any failure is wrapped in
// ErrUpstreamUnavailable. When the model omits a suggested query the raw
// query stands in, so a degenerate-but-valid response still commits.
func (c *Client) Optimize(ctx context.Context, rawQuery string) (types.SearchProfile, error) {
	var buf bytes.Buffer
	if err := optimizePromptTmpl.Execute(&buf, struct{ Query string }{rawQuery}); err != nil {
		return types.SearchProfile{}, fmt.Errorf("%w: rendering prompt: %v", ErrUpstreamUnavailable, err)
	}

	out, err := c.ai.Generate(ctx, buf.String())
	if err != nil {
		return types.SearchProfile{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var pr profileResponse
	if err := ai.DecodeJSON(out, &pr); err != nil {
		return types.SearchProfile{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	profile := types.SearchProfile{
		Conditions:     pr.Conditions,
		Interventions:  pr.Interventions,
		Targets:        pr.Targets,
		Synonyms:       pr.Synonyms,
		SuggestedQuery: pr.SuggestedQuery,
	}
	if profile.SuggestedQuery == "" {
		profile.SuggestedQuery = rawQuery
	}
	return profile, nil
}
