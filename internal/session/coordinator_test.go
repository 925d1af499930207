// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdiddy/trialscout/internal/enrich"
	"github.com/pdiddy/trialscout/pkg/types"
)

type stubOptimizer struct {
	profile types.SearchProfile
	err     error
}

func (o *stubOptimizer) Optimize(_ context.Context, rawQuery string) (types.SearchProfile, error) {
	if o.err != nil {
		return types.SearchProfile{}, o.err
	}
	p := o.profile
	if p.SuggestedQuery == "" {
		p.SuggestedQuery = rawQuery
	}
	return p, nil
}

type stubTrials struct {
	trials []types.Trial
	err    error
	query  string
}

func (s *stubTrials) Search(_ context.Context, query string, _ types.TrialFilters, _ types.SortOrder) ([]types.Trial, error) {
	s.query = query
	return s.trials, s.err
}

type stubPubs struct {
	pubs  []types.Publication
	err   error
	query string
}

func (s *stubPubs) Search(_ context.Context, query string, _ types.PublicationFilters, _ types.SortOrder) ([]types.Publication, error) {
	s.query = query
	return s.pubs, s.err
}

type stubScorer struct {
	scores map[string]types.Relevance
	err    error
	gate   chan struct{} // if non-nil, Score blocks until the gate closes
}

func (s *stubScorer) Score(_ context.Context, _ string, _ []enrich.Item) (map[string]types.Relevance, error) {
	if s.gate != nil {
		<-s.gate
	}
	return s.scores, s.err
}

func newTestCoordinator(opt QueryOptimizer, trials TrialSource, pubs PublicationSource, scorer RelevanceScorer) *Coordinator {
	if opt == nil {
		opt = &stubOptimizer{}
	}
	if trials == nil {
		trials = &stubTrials{}
	}
	if pubs == nil {
		pubs = &stubPubs{}
	}
	if scorer == nil {
		scorer = &stubScorer{}
	}
	return NewCoordinator(New("default"), opt, trials, pubs, scorer, Oracles{}, types.EnrichConfig{SampleCap: enrich.DefaultSampleCap}, nil)
}

// waitFor polls the session until cond holds or the deadline passes.
func waitFor(t *testing.T, s *Session, cond func(State) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond(s.Snapshot()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline; state: %+v", s.Snapshot())
}

func TestCommitPublishesBothCollections(t *testing.T) {
	trials := &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}, {NCTID: "NCT2"}}}
	pubs := &stubPubs{pubs: []types.Publication{{PMID: "100"}}}
	opt := &stubOptimizer{profile: types.SearchProfile{SuggestedQuery: "egfr OR her2", Conditions: []string{"nsclc"}}}
	c := newTestCoordinator(opt, trials, pubs, nil)

	if err := c.Commit(context.Background(), "lung cancer", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	snap := c.Session().Snapshot()
	if len(snap.Trials) != 2 || snap.Trials[0].NCTID != "NCT1" {
		t.Errorf("trials not published: %+v", snap.Trials)
	}
	if len(snap.Publications) != 1 || snap.Publications[0].PMID != "100" {
		t.Errorf("publications not published: %+v", snap.Publications)
	}
	if snap.Profile == nil || snap.Profile.SuggestedQuery != "egfr OR her2" {
		t.Errorf("profile not published: %+v", snap.Profile)
	}
	if snap.Loading {
		t.Error("Loading still set after publish")
	}
	if snap.Err != "" {
		t.Errorf("Err = %q", snap.Err)
	}

	// Registry gets the rewritten query; literature keeps the raw one.
	if trials.query != "egfr OR her2" {
		t.Errorf("registry query = %q", trials.query)
	}
	if pubs.query != "lung cancer" {
		t.Errorf("literature query = %q", pubs.query)
	}
}

func TestCommitOptimizerFailurePreservesResults(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, nil)
	if err := c.Commit(context.Background(), "first", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}

	c.optimizer = &stubOptimizer{err: errors.New("model unavailable")}
	err := c.Commit(context.Background(), "second", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance)
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed", err)
	}

	snap := c.Session().Snapshot()
	if len(snap.Trials) != 1 || snap.Trials[0].NCTID != "NCT1" {
		t.Errorf("previous trials should remain visible: %+v", snap.Trials)
	}
	if snap.Err == "" {
		t.Error("session error should be set")
	}
	if snap.Loading {
		t.Error("Loading should be cleared on failure")
	}
}

func TestCommitRetrieverFailureAbortsWholeCommit(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, nil)
	if err := c.Commit(context.Background(), "first", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}

	// Trials succeed with new results, publications fail: nothing publishes.
	c.trials = &stubTrials{trials: []types.Trial{{NCTID: "NCT9"}}}
	c.pubs = &stubPubs{err: errors.New("esearch 502")}
	err := c.Commit(context.Background(), "second", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance)
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed", err)
	}

	snap := c.Session().Snapshot()
	if len(snap.Trials) != 1 || snap.Trials[0].NCTID != "NCT1" {
		t.Errorf("partial results must not publish: %+v", snap.Trials)
	}
	if snap.Err == "" || snap.Loading {
		t.Errorf("Err=%q Loading=%v", snap.Err, snap.Loading)
	}
}

func TestCommitResetsSearchScopedState(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, nil)
	if err := c.Commit(context.Background(), "first", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}
	c.session.Update(func(s State) State {
		s.SelectedNCTID = "NCT1"
		s.DeepReport = &types.DeepReport{NCTID: "NCT1"}
		s.ChatHistory = []types.ChatMessage{{Content: "hi"}}
		return s
	})

	if err := c.Commit(context.Background(), "second", types.TrialFilters{}, types.PublicationFilters{}, types.SortNewest); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	snap := c.Session().Snapshot()
	if snap.SelectedNCTID != "" || snap.DeepReport != nil || len(snap.ChatHistory) != 0 {
		t.Errorf("search-scoped state survived commit: %+v", snap)
	}
	if snap.Query != "second" || snap.SortOrder != types.SortNewest {
		t.Errorf("commit inputs not recorded: %+v", snap)
	}
}

func TestEnrichmentEventuallyAppliesScores(t *testing.T) {
	scorer := &stubScorer{scores: map[string]types.Relevance{
		"NCT1": {Score: 85, Rationale: "direct mechanism match"},
		"200":  {Score: 40, Rationale: "tangential"},
	}}
	c := newTestCoordinator(nil,
		&stubTrials{trials: []types.Trial{{NCTID: "NCT1"}, {NCTID: "NCT2"}}},
		&stubPubs{pubs: []types.Publication{{PMID: "200"}}},
		scorer)

	if err := c.Commit(context.Background(), "q", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	// Publish happens before any score exists.
	waitFor(t, c.Session(), func(s State) bool {
		return len(s.Trials) == 2 && s.Trials[0].RelevanceScore != nil
	})

	snap := c.Session().Snapshot()
	if *snap.Trials[0].RelevanceScore != 85 || snap.Trials[0].ScoreRationale != "direct mechanism match" {
		t.Errorf("trial score not merged: %+v", snap.Trials[0])
	}
	if snap.Trials[1].RelevanceScore != nil {
		t.Error("unscored trial should stay unscored")
	}
	if snap.Publications[0].RelevanceScore == nil || *snap.Publications[0].RelevanceScore != 40 {
		t.Errorf("publication score not merged: %+v", snap.Publications[0])
	}
}

func TestEnrichmentFailureIsInvisible(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model overloaded")}
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, scorer)

	if err := c.Commit(context.Background(), "q", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	snap := c.Session().Snapshot()
	if snap.Err != "" {
		t.Errorf("enrichment failure leaked into session error: %q", snap.Err)
	}
	if len(snap.Trials) != 1 {
		t.Errorf("collections disturbed: %+v", snap.Trials)
	}
}

func TestMergeScoresIdempotent(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, nil)
	if err := c.Commit(context.Background(), "q", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	epoch := c.Session().Snapshot().Epoch

	scores := map[string]types.Relevance{"NCT1": {Score: 70, Rationale: "r"}}
	c.MergeScores(epoch, scores)
	first := c.Session().Snapshot()
	c.MergeScores(epoch, scores)
	second := c.Session().Snapshot()

	if *first.Trials[0].RelevanceScore != 70 || *second.Trials[0].RelevanceScore != 70 {
		t.Errorf("scores after merges: %v, %v", first.Trials[0].RelevanceScore, second.Trials[0].RelevanceScore)
	}
	if second.Trials[0].ScoreRationale != "r" {
		t.Errorf("rationale = %q", second.Trials[0].ScoreRationale)
	}
}

func TestMergeScoresIsIdentifierScoped(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}, {NCTID: "NCT2"}}}, nil, nil)
	if err := c.Commit(context.Background(), "q", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	epoch := c.Session().Snapshot().Epoch

	c.MergeScores(epoch, map[string]types.Relevance{"NCT1": {Score: 60}})
	c.MergeScores(epoch, map[string]types.Relevance{"NCT2": {Score: 30}})

	snap := c.Session().Snapshot()
	if snap.Trials[0].RelevanceScore == nil || *snap.Trials[0].RelevanceScore != 60 {
		t.Errorf("earlier merge lost: %+v", snap.Trials[0])
	}
	if snap.Trials[1].RelevanceScore == nil || *snap.Trials[1].RelevanceScore != 30 {
		t.Errorf("later merge lost: %+v", snap.Trials[1])
	}
}

func TestMergeScoresDiscardsStaleEpoch(t *testing.T) {
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, nil)
	if err := c.Commit(context.Background(), "first", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	staleEpoch := c.Session().Snapshot().Epoch

	if err := c.Commit(context.Background(), "second", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	c.MergeScores(staleEpoch, map[string]types.Relevance{"NCT1": {Score: 99, Rationale: "stale"}})

	snap := c.Session().Snapshot()
	if snap.Trials[0].ScoreRationale == "stale" {
		t.Error("stale enrichment result applied to a newer search")
	}
}

// queryKeyedScorer answers per raw query: the first search's call blocks on
// the gate, the second returns immediately.
type queryKeyedScorer struct {
	gate chan struct{}
}

func (s *queryKeyedScorer) Score(_ context.Context, query string, _ []enrich.Item) (map[string]types.Relevance, error) {
	if query == "first" {
		<-s.gate
		return map[string]types.Relevance{"NCT1": {Score: 99, Rationale: "from first search"}}, nil
	}
	return map[string]types.Relevance{"NCT1": {Score: 10, Rationale: "from second search"}}, nil
}

// A slow scorer from search one must never write into the results of search
// two, even though NCT1 appears in both collections.
func TestSlowEnrichmentNeverCrossesSearches(t *testing.T) {
	gate := make(chan struct{})
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1"}}}, nil, &queryKeyedScorer{gate: gate})

	if err := c.Commit(context.Background(), "first", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	// Second commit supersedes the first while its scorer is still blocked.
	if err := c.Commit(context.Background(), "second", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	waitFor(t, c.Session(), func(s State) bool {
		return len(s.Trials) == 1 && s.Trials[0].RelevanceScore != nil
	})

	// Release the first scorer; its result must be discarded.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	snap := c.Session().Snapshot()
	if snap.Trials[0].ScoreRationale != "from second search" {
		t.Errorf("rationale = %q, first search's scores leaked forward", snap.Trials[0].ScoreRationale)
	}
}

type stubAuditOracle struct {
	report types.DeepReport
	err    error
}

func (o *stubAuditOracle) Audit(_ context.Context, trial types.Trial) (types.DeepReport, error) {
	if o.err != nil {
		return types.DeepReport{}, o.err
	}
	r := o.report
	r.NCTID = trial.NCTID
	return r, nil
}

type stubAssistant struct {
	reply string
	err   error
}

func (a *stubAssistant) Reply(_ context.Context, _ string, _ []types.Trial, _ []types.ChatMessage) (string, error) {
	return a.reply, a.err
}

func seededCoordinator(t *testing.T, oracles Oracles) *Coordinator {
	t.Helper()
	c := newTestCoordinator(nil, &stubTrials{trials: []types.Trial{{NCTID: "NCT1", Title: "A"}, {NCTID: "NCT2", Title: "B"}}}, nil, nil)
	c.oracles = oracles
	if err := c.Commit(context.Background(), "q", types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}
	return c
}

func TestSelectTrial(t *testing.T) {
	c := seededCoordinator(t, Oracles{})

	if err := c.SelectTrial("NCT2"); err != nil {
		t.Fatalf("SelectTrial() error = %v", err)
	}
	if got := c.Session().Snapshot().SelectedNCTID; got != "NCT2" {
		t.Errorf("SelectedNCTID = %q", got)
	}

	if err := c.SelectTrial("NCT404"); !errors.Is(err, ErrNoSuchTrial) {
		t.Errorf("err = %v, want ErrNoSuchTrial", err)
	}
}

func TestRunAudit(t *testing.T) {
	c := seededCoordinator(t, Oracles{Audit: &stubAuditOracle{report: types.DeepReport{Overview: "o"}}})

	if err := c.RunAudit(context.Background(), "NCT1"); err != nil {
		t.Fatalf("RunAudit() error = %v", err)
	}
	snap := c.Session().Snapshot()
	if snap.DeepReport == nil || snap.DeepReport.NCTID != "NCT1" {
		t.Errorf("report not stored: %+v", snap.DeepReport)
	}
	if snap.AuditLoading {
		t.Error("AuditLoading still set")
	}
}

func TestRunAuditFailure(t *testing.T) {
	c := seededCoordinator(t, Oracles{Audit: &stubAuditOracle{err: errors.New("quota")}})

	if err := c.RunAudit(context.Background(), "NCT1"); err == nil {
		t.Fatal("expected error")
	}
	snap := c.Session().Snapshot()
	if snap.DeepReport != nil {
		t.Error("result slot should stay unset on failure")
	}
	if snap.Err == "" || snap.AuditLoading {
		t.Errorf("Err=%q AuditLoading=%v", snap.Err, snap.AuditLoading)
	}
}

func TestRunComparisonSelectionBounds(t *testing.T) {
	c := seededCoordinator(t, Oracles{})

	for _, ids := range [][]string{{"NCT1"}, {"NCT1", "NCT2", "NCT1", "NCT2", "NCT1"}} {
		if err := c.RunComparison(context.Background(), ids); !errors.Is(err, ErrBadSelection) {
			t.Errorf("RunComparison(%v) = %v, want ErrBadSelection", ids, err)
		}
	}
	if err := c.RunComparison(context.Background(), []string{"NCT1", "NCT404"}); !errors.Is(err, ErrNoSuchTrial) {
		t.Errorf("err = %v, want ErrNoSuchTrial", err)
	}
}

func TestAskAppendsHistory(t *testing.T) {
	c := seededCoordinator(t, Oracles{Assistant: &stubAssistant{reply: "two trials match"}})

	reply, err := c.Ask(context.Background(), "how many trials?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply != "two trials match" {
		t.Errorf("reply = %q", reply)
	}

	history := c.Session().Snapshot().ChatHistory
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "how many trials?" {
		t.Errorf("user turn: %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != "two trials match" {
		t.Errorf("assistant turn: %+v", history[1])
	}
}

func TestAskFailureLeavesHistoryUntouched(t *testing.T) {
	c := seededCoordinator(t, Oracles{Assistant: &stubAssistant{err: errors.New("overloaded")}})

	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	snap := c.Session().Snapshot()
	if len(snap.ChatHistory) != 0 {
		t.Errorf("history should be empty after failure: %+v", snap.ChatHistory)
	}
	if snap.Err == "" || snap.ChatLoading {
		t.Errorf("Err=%q ChatLoading=%v", snap.Err, snap.ChatLoading)
	}
}
