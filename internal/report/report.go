// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report implements the synthesis oracles: the deep-metrics audit,
// the comparison matrix, the pipeline categorization, and the architecture
// image. Each workflow is a single model call returning one typed result;
// the session stores the result opaquely.
package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"text/template"

	"github.com/pdiddy/trialscout/internal/ai"
	"github.com/pdiddy/trialscout/pkg/types"
)

// Oracle runs the synthesis workflows over a shared model client.
type Oracle struct {
	ai ai.Client
}

// NewOracle builds an oracle over the given model client.
func NewOracle(aiClient ai.Client) *Oracle {
	return &Oracle{ai: aiClient}
}

// Audit produces the fixed ten-section report for one trial.
func (o *Oracle) Audit(ctx context.Context, trial types.Trial) (types.DeepReport, error) {
	out, err := o.generate(ctx, auditPromptTmpl, trial)
	if err != nil {
		return types.DeepReport{}, err
	}

	var report types.DeepReport
	if err := ai.DecodeJSON(out, &report); err != nil {
		return types.DeepReport{}, fmt.Errorf("deep audit: %w", err)
	}
	report.NCTID = trial.NCTID
	return report, nil
}

// Compare builds a side-by-side matrix for the given trials.
func (o *Oracle) Compare(ctx context.Context, trials []types.Trial) (types.ComparisonMatrix, error) {
	out, err := o.generate(ctx, comparePromptTmpl, trials)
	if err != nil {
		return types.ComparisonMatrix{}, err
	}

	var matrix types.ComparisonMatrix
	if err := ai.DecodeJSON(out, &matrix); err != nil {
		return types.ComparisonMatrix{}, fmt.Errorf("comparison: %w", err)
	}
	return matrix, nil
}

// Categorize groups the collection into a phase-organized pipeline view.
func (o *Oracle) Categorize(ctx context.Context, trials []types.Trial) (types.PipelineView, error) {
	out, err := o.generate(ctx, pipelinePromptTmpl, trials)
	if err != nil {
		return types.PipelineView{}, err
	}

	var view types.PipelineView
	if err := ai.DecodeJSON(out, &view); err != nil {
		return types.PipelineView{}, fmt.Errorf("pipeline categorization: %w", err)
	}
	return view, nil
}

// imageResponse mirrors the JSON contract of the architecture prompt.
type imageResponse struct {
	MIMEType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64"`
}

// Render produces the landscape image for the collection.
func (o *Oracle) Render(ctx context.Context, trials []types.Trial) (types.ArchitectureImage, error) {
	out, err := o.generate(ctx, architecturePromptTmpl, trials)
	if err != nil {
		return types.ArchitectureImage{}, err
	}

	var ir imageResponse
	if err := ai.DecodeJSON(out, &ir); err != nil {
		return types.ArchitectureImage{}, fmt.Errorf("architecture image: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(ir.DataBase64)
	if err != nil {
		return types.ArchitectureImage{}, fmt.Errorf("architecture image payload: %w", err)
	}
	return types.ArchitectureImage{MIMEType: ir.MIMEType, Data: data}, nil
}

// generate renders tmpl with data and runs one model call.
func (o *Oracle) generate(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	out, err := o.ai.Generate(ctx, buf.String())
	if err != nil {
		return "", fmt.Errorf("%s oracle: %w", tmpl.Name(), err)
	}
	return out, nil
}
