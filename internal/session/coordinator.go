// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/trialscout/internal/enrich"
	"github.com/pdiddy/trialscout/pkg/types"
)

// ErrSearchFailed marks a fatal foreground failure: the optimizer or either
// retriever failed, the commit was aborted, and the previous collections
// remain visible.
var ErrSearchFailed = errors.New("search failed")

// QueryOptimizer expands a raw query into a search profile.
type QueryOptimizer interface {
	Optimize(ctx context.Context, rawQuery string) (types.SearchProfile, error)
}

// TrialSource retrieves registry trials.
type TrialSource interface {
	Search(ctx context.Context, query string, filters types.TrialFilters, order types.SortOrder) ([]types.Trial, error)
}

// PublicationSource retrieves literature publications.
type PublicationSource interface {
	Search(ctx context.Context, query string, filters types.PublicationFilters, order types.SortOrder) ([]types.Publication, error)
}

// RelevanceScorer rates sampled entities against a query.
type RelevanceScorer interface {
	Score(ctx context.Context, query string, items []enrich.Item) (map[string]types.Relevance, error)
}

// Coordinator sequences a search commit: optimizer, then both retrievers in
// parallel, then an atomic publish, then the detached enrichment pass. It is
// also the gate for the synthesis workflows (workflows.go).
type Coordinator struct {
	session   *Session
	optimizer QueryOptimizer
	trials    TrialSource
	pubs      PublicationSource
	scorer    RelevanceScorer
	oracles   Oracles
	enrichCfg types.EnrichConfig
	w         io.Writer
}

// NewCoordinator wires a coordinator over the given session and
// collaborators. w receives diagnostics for failures that are deliberately
// invisible to the user (the best-effort background pass).
func NewCoordinator(s *Session, opt QueryOptimizer, trials TrialSource, pubs PublicationSource, scorer RelevanceScorer, oracles Oracles, enrichCfg types.EnrichConfig, w io.Writer) *Coordinator {
	if w == nil {
		w = io.Discard
	}
	return &Coordinator{
		session:   s,
		optimizer: opt,
		trials:    trials,
		pubs:      pubs,
		scorer:    scorer,
		oracles:   oracles,
		enrichCfg: enrichCfg,
		w:         w,
	}
}

// Session returns the session this coordinator owns.
func (c *Coordinator) Session() *Session {
	return c.session
}

// Commit runs one full search. The call is synchronous through the publish
// point; the enrichment pass is spawned detached and never awaited. On any
// foreground failure the previous collections stay visible, the session
// error is set, and ErrSearchFailed is returned.
func (c *Coordinator) Commit(ctx context.Context, query string, tf types.TrialFilters, pf types.PublicationFilters, order types.SortOrder) error {
	var epoch uint64
	c.session.Update(func(s State) State {
		s.Epoch++
		epoch = s.Epoch
		s.Loading = true
		s.Err = ""
		s.Query = query
		s.TrialFilters = tf
		s.PublicationFilters = pf
		s.SortOrder = order
		s.resetSearchScoped()
		return s
	})

	profile, err := c.optimizer.Optimize(ctx, query)
	if err != nil {
		c.fail(fmt.Sprintf("search optimization unavailable: %v", err))
		return fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	// Fan out to both sources. The optimizer's rewritten query drives the
	// registry; literature intentionally keeps the raw query. Either
	// failure aborts the whole commit.
	var trials []types.Trial
	var pubs []types.Publication
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trials, err = c.trials.Search(gctx, profile.SuggestedQuery, tf, order)
		return err
	})
	g.Go(func() error {
		var err error
		pubs, err = c.pubs.Search(gctx, query, pf, order)
		return err
	})
	if err := g.Wait(); err != nil {
		c.fail(fmt.Sprintf("retrieval failed: %v", err))
		return fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	// Publish: the session is fully interactive from here, before any
	// entity has a relevance score.
	c.session.Update(func(s State) State {
		s.Trials = trials
		s.Publications = pubs
		p := profile
		s.Profile = &p
		s.Loading = false
		return s
	})

	// Detached best-effort pass. WithoutCancel keeps it alive after the
	// committing call returns or its context is cancelled.
	go c.enrichAsync(context.WithoutCancel(ctx), epoch, query, trials, pubs)

	return nil
}

// fail records a fatal foreground failure. Collections are left untouched so
// stale-but-valid results remain visible.
func (c *Coordinator) fail(msg string) {
	c.session.Update(func(s State) State {
		s.Err = msg
		s.Loading = false
		return s
	})
}

// enrichAsync samples the just-published collections, calls the scorer, and
// merges the result. Failures of any kind are logged and discarded; nothing
// here touches Loading or Err.
func (c *Coordinator) enrichAsync(ctx context.Context, epoch uint64, query string, trials []types.Trial, pubs []types.Publication) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(c.w, "warning: enrichment pass panicked: %v\n", r)
		}
	}()

	items := enrich.Sample(trials, pubs, c.enrichCfg.SampleCap)
	if len(items) == 0 {
		return
	}

	scores, err := c.scorer.Score(ctx, query, items)
	if err != nil {
		fmt.Fprintf(c.w, "warning: enrichment pass failed: %v\n", err)
		return
	}

	c.MergeScores(epoch, scores)
}

// MergeScores applies a relevance mapping to the current collections. The
// merge is identifier-scoped: entities absent from the mapping keep their
// existing score and rationale. Applying the same mapping twice is
// idempotent (last write wins per identifier). A mapping produced for a
// superseded epoch is discarded wholesale.
func (c *Coordinator) MergeScores(epoch uint64, scores map[string]types.Relevance) {
	c.session.Update(func(s State) State {
		if s.Epoch != epoch {
			fmt.Fprintf(c.w, "discarding stale enrichment result (epoch %d, current %d)\n", epoch, s.Epoch)
			return s
		}
		for i := range s.Trials {
			if r, ok := scores[s.Trials[i].NCTID]; ok {
				score := r.Score
				s.Trials[i].RelevanceScore = &score
				s.Trials[i].ScoreRationale = r.Rationale
			}
		}
		for i := range s.Publications {
			if r, ok := scores[s.Publications[i].PMID]; ok {
				score := r.Score
				s.Publications[i].RelevanceScore = &score
				s.Publications[i].ScoreRationale = r.Rationale
			}
		}
		return s
	})
}
