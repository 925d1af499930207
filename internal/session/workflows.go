// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/trialscout/internal/chat"
	"github.com/pdiddy/trialscout/pkg/types"
)

// Synthesis workflow errors. A failed workflow also sets the session error
// and clears its own loading flag; the result slot stays unset.
var (
	ErrNoSuchTrial  = errors.New("trial not in current results")
	ErrBadSelection = errors.New("comparison needs 2 to 4 trials")
	ErrNoCandidates = errors.New("no trials in current results")
)

// DeepMetricsOracle produces the fixed-shape audit report for one trial.
type DeepMetricsOracle interface {
	Audit(ctx context.Context, trial types.Trial) (types.DeepReport, error)
}

// ComparisonOracle builds a side-by-side matrix for 2-4 trials.
type ComparisonOracle interface {
	Compare(ctx context.Context, trials []types.Trial) (types.ComparisonMatrix, error)
}

// PipelineOracle groups the trial collection into a phase-organized view.
type PipelineOracle interface {
	Categorize(ctx context.Context, trials []types.Trial) (types.PipelineView, error)
}

// ArchitectureOracle renders a landscape image for the trial collection. Its
// output is stored opaquely.
type ArchitectureOracle interface {
	Render(ctx context.Context, trials []types.Trial) (types.ArchitectureImage, error)
}

// Assistant answers a free-text question grounded in the current results.
type Assistant interface {
	Reply(ctx context.Context, question string, trials []types.Trial, history []types.ChatMessage) (string, error)
}

// Oracles bundles the synthesis collaborators. Nil members disable the
// corresponding workflow.
type Oracles struct {
	Audit        DeepMetricsOracle
	Compare      ComparisonOracle
	Pipeline     PipelineOracle
	Architecture ArchitectureOracle
	Assistant    Assistant
}

// SelectTrial marks a trial as the active detail view. Selecting an id not
// in the current collection returns ErrNoSuchTrial.
func (c *Coordinator) SelectTrial(nctID string) error {
	if _, ok := c.findTrial(nctID); !ok {
		return ErrNoSuchTrial
	}
	c.session.Update(func(s State) State {
		s.SelectedNCTID = nctID
		return s
	})
	return nil
}

// RunAudit generates the deep-metrics report for one trial from the current
// (unfiltered) collection.
func (c *Coordinator) RunAudit(ctx context.Context, nctID string) error {
	if c.oracles.Audit == nil {
		return errors.New("deep-metrics oracle not configured")
	}
	trial, ok := c.findTrial(nctID)
	if !ok {
		return ErrNoSuchTrial
	}

	c.setFlag(func(s *State, v bool) { s.AuditLoading = v }, true)
	report, err := c.oracles.Audit.Audit(ctx, trial)
	if err != nil {
		c.workflowFail(fmt.Sprintf("deep audit failed: %v", err), func(s *State, v bool) { s.AuditLoading = v })
		return err
	}

	c.session.Update(func(s State) State {
		s.DeepReport = &report
		s.AuditLoading = false
		return s
	})
	return nil
}

// RunComparison builds the comparison matrix for the given 2-4 trial ids.
func (c *Coordinator) RunComparison(ctx context.Context, nctIDs []string) error {
	if c.oracles.Compare == nil {
		return errors.New("comparison oracle not configured")
	}
	if len(nctIDs) < 2 || len(nctIDs) > 4 {
		return ErrBadSelection
	}

	trials := make([]types.Trial, 0, len(nctIDs))
	for _, id := range nctIDs {
		trial, ok := c.findTrial(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoSuchTrial, id)
		}
		trials = append(trials, trial)
	}

	c.setFlag(func(s *State, v bool) { s.ComparisonLoading = v }, true)
	matrix, err := c.oracles.Compare.Compare(ctx, trials)
	if err != nil {
		c.workflowFail(fmt.Sprintf("comparison failed: %v", err), func(s *State, v bool) { s.ComparisonLoading = v })
		return err
	}

	c.session.Update(func(s State) State {
		s.Comparison = &matrix
		s.ComparisonLoading = false
		return s
	})
	return nil
}

// RunPipeline categorizes the whole current trial collection.
func (c *Coordinator) RunPipeline(ctx context.Context) error {
	if c.oracles.Pipeline == nil {
		return errors.New("pipeline oracle not configured")
	}
	trials := c.session.Snapshot().Trials
	if len(trials) == 0 {
		return ErrNoCandidates
	}

	c.setFlag(func(s *State, v bool) { s.PipelineLoading = v }, true)
	view, err := c.oracles.Pipeline.Categorize(ctx, trials)
	if err != nil {
		c.workflowFail(fmt.Sprintf("pipeline categorization failed: %v", err), func(s *State, v bool) { s.PipelineLoading = v })
		return err
	}

	c.session.Update(func(s State) State {
		s.Pipeline = &view
		s.PipelineLoading = false
		return s
	})
	return nil
}

// RunArchitecture renders the landscape image for the current collection.
func (c *Coordinator) RunArchitecture(ctx context.Context) error {
	if c.oracles.Architecture == nil {
		return errors.New("architecture oracle not configured")
	}
	trials := c.session.Snapshot().Trials
	if len(trials) == 0 {
		return ErrNoCandidates
	}

	c.setFlag(func(s *State, v bool) { s.ArchitectureLoading = v }, true)
	img, err := c.oracles.Architecture.Render(ctx, trials)
	if err != nil {
		c.workflowFail(fmt.Sprintf("architecture image failed: %v", err), func(s *State, v bool) { s.ArchitectureLoading = v })
		return err
	}

	c.session.Update(func(s State) State {
		s.Architecture = &img
		s.ArchitectureLoading = false
		return s
	})
	return nil
}

// Ask sends one assistant turn grounded in the current unfiltered trial
// collection and appends both sides to the history. History resets on every
// commit.
func (c *Coordinator) Ask(ctx context.Context, question string) (string, error) {
	if c.oracles.Assistant == nil {
		return "", errors.New("assistant not configured")
	}

	snap := c.session.Snapshot()
	userMsg := chat.NewMessage(chat.RoleUser, question)

	c.setFlag(func(s *State, v bool) { s.ChatLoading = v }, true)
	reply, err := c.oracles.Assistant.Reply(ctx, question, snap.Trials, snap.ChatHistory)
	if err != nil {
		c.workflowFail(fmt.Sprintf("assistant failed: %v", err), func(s *State, v bool) { s.ChatLoading = v })
		return "", err
	}

	assistantMsg := chat.NewMessage(chat.RoleAssistant, reply)
	c.session.Update(func(s State) State {
		s.ChatHistory = append(s.ChatHistory, userMsg, assistantMsg)
		s.ChatLoading = false
		return s
	})
	return reply, nil
}

// findTrial looks up a trial by registry id in the current collection.
func (c *Coordinator) findTrial(nctID string) (types.Trial, bool) {
	for _, t := range c.session.Snapshot().Trials {
		if t.NCTID == nctID {
			return t, true
		}
	}
	return types.Trial{}, false
}

// setFlag flips one workflow loading flag.
func (c *Coordinator) setFlag(set func(*State, bool), v bool) {
	c.session.Update(func(s State) State {
		set(&s, v)
		return s
	})
}

// workflowFail records a synthesis failure: session error set, the
// workflow's own flag cleared, result slot left unset.
func (c *Coordinator) workflowFail(msg string, clear func(*State, bool)) {
	c.session.Update(func(s State) State {
		s.Err = msg
		clear(&s, false)
		return s
	})
}
