// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich implements the relevance scorer behind the background
// enrichment pass: given the original raw query and a bounded sample of
// already-retrieved identifiers, it returns per-identifier 0-100 scores with
// rationale text. The scorer is best-effort; its caller discards failures.
//
// See docs/ARCHITECTURE.md § Enrichment.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/trialscout/internal/ai"
	"github.com/pdiddy/trialscout/pkg/types"
)

// DefaultSampleCap is the number of entities per source sampled for scoring
// when the configuration leaves SampleCap unset.
const DefaultSampleCap = 15

// scorePromptTmpl asks the model to rate each identifier's relevance to the
// query. Identifiers carry their titles so the model has something to judge.
var scorePromptTmpl = template.Must(template.New("score").Parse(`You are a clinical research relevance rater. For the user's query, rate how relevant each item below is on a 0-100 scale and give a one-sentence rationale.

Respond with a JSON object containing a "scores" array. Each element must have "id" (string, copied exactly from the input), "score" (integer 0-100), and "rationale" (string). Omit items you cannot rate. Do not include any text outside the JSON object.

Query:
{{.Query}}

Items:
{{range .Items}}- {{.ID}}: {{.Title}}
{{end}}`))

// Item is one sampled entity sent for scoring.
type Item struct {
	ID    string
	Title string
}

// Sample returns the first cap trials and first cap publications as scoring
// items, in retrieval order. No score-based pre-selection happens here; at
// sampling time nothing has a score yet.
func Sample(trials []types.Trial, pubs []types.Publication, cap int) []Item {
	if cap <= 0 {
		cap = DefaultSampleCap
	}

	var items []Item
	for i, t := range trials {
		if i >= cap {
			break
		}
		items = append(items, Item{ID: t.NCTID, Title: t.Title})
	}
	for i, p := range pubs {
		if i >= cap {
			break
		}
		items = append(items, Item{ID: p.PMID, Title: p.Title})
	}
	return items
}

// Scorer rates sampled entities against a query via one AI call.
type Scorer struct {
	ai ai.Client
}

// NewScorer builds a scorer over the given model client.
func NewScorer(aiClient ai.Client) *Scorer {
	return &Scorer{ai: aiClient}
}

// scoreResponse mirrors the JSON contract of the scoring prompt.
type scoreResponse struct {
	Scores []struct {
		ID        string `json:"id"`
		Score     int    `json:"score"`
		Rationale string `json:"rationale"`
	} `json:"scores"`
}

// Score rates the items against query and returns an identifier → relevance
// mapping. Identifiers the model omits are simply absent from the result;
// out-of-range scores are clamped to [0, 100].
func (s *Scorer) Score(ctx context.Context, query string, items []Item) (map[string]types.Relevance, error) {
	if len(items) == 0 {
		return map[string]types.Relevance{}, nil
	}

	var buf bytes.Buffer
	data := struct {
		Query string
		Items []Item
	}{query, items}
	if err := scorePromptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering scoring prompt: %w", err)
	}

	out, err := s.ai.Generate(ctx, buf.String())
	if err != nil {
		return nil, fmt.Errorf("relevance scorer: %w", err)
	}

	var sr scoreResponse
	if err := ai.DecodeJSON(out, &sr); err != nil {
		return nil, fmt.Errorf("relevance scorer: %w", err)
	}

	scores := make(map[string]types.Relevance, len(sr.Scores))
	for _, e := range sr.Scores {
		if e.ID == "" {
			continue
		}
		scores[e.ID] = types.Relevance{Score: clamp(e.Score), Rationale: e.Rationale}
	}
	return scores, nil
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
