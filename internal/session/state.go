// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the shared search state and the retrieval
// coordinator: the only subsystem with real concurrency coordination. A
// foreground commit runs optimizer → parallel retrieval → publish; a
// detached background pass then attaches relevance scores. All state
// mutation funnels through the single serialized Session owner as
// whole-state replacement, and every commit is tagged with a monotonically
// increasing epoch so late enrichment results for a superseded search are
// discarded.
//
// See docs/ARCHITECTURE.md § Session & Coordinator.
package session

import "github.com/pdiddy/trialscout/pkg/types"

// State is the session aggregate. It is treated as a value: updates build a
// new State from a copy of the current one, and readers receive copies.
type State struct {
	// Query is the raw query of the authoritative commit.
	Query string

	// TrialFilters and PublicationFilters are the server-side filters of
	// the authoritative commit.
	TrialFilters       types.TrialFilters
	PublicationFilters types.PublicationFilters

	// SortOrder is the global sort order.
	SortOrder types.SortOrder

	// Trials and Publications are the published collections. A commit
	// replaces them wholesale; enrichment only augments score fields on
	// entities already present.
	Trials       []types.Trial
	Publications []types.Publication

	// Profile is the optimizer output of the authoritative commit.
	Profile *types.SearchProfile

	// Loading is true only during the foreground commit window. The
	// background enrichment pass never touches it.
	Loading bool

	// Err is the session-level error message; empty means no error.
	Err string

	// Epoch increments on every commit. Background results tagged with an
	// older epoch are discarded.
	Epoch uint64

	// Per-search UI state, reset on every commit.
	SelectedNCTID string
	DeepReport    *types.DeepReport
	Comparison    *types.ComparisonMatrix
	Pipeline      *types.PipelineView
	Architecture  *types.ArchitectureImage
	ChatHistory   []types.ChatMessage

	// Per-workflow loading flags, independent of Loading.
	AuditLoading        bool
	ComparisonLoading   bool
	PipelineLoading     bool
	ArchitectureLoading bool
	ChatLoading         bool
}

// resetSearchScoped clears everything tied to the previous search: detail
// selections, generated reports, and conversation history.
func (s *State) resetSearchScoped() {
	s.SelectedNCTID = ""
	s.DeepReport = nil
	s.Comparison = nil
	s.Pipeline = nil
	s.Architecture = nil
	s.ChatHistory = nil
	s.AuditLoading = false
	s.ComparisonLoading = false
	s.PipelineLoading = false
	s.ArchitectureLoading = false
	s.ChatLoading = false
}

// clone returns a copy of s with its own backing storage, so neither an
// update function nor a snapshot holder can alias the committed state.
func (s State) clone() State {
	c := s
	c.Trials = append([]types.Trial(nil), s.Trials...)
	c.Publications = append([]types.Publication(nil), s.Publications...)
	c.ChatHistory = append([]types.ChatMessage(nil), s.ChatHistory...)
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	if s.DeepReport != nil {
		r := *s.DeepReport
		c.DeepReport = &r
	}
	if s.Comparison != nil {
		m := *s.Comparison
		c.Comparison = &m
	}
	if s.Pipeline != nil {
		v := *s.Pipeline
		c.Pipeline = &v
	}
	if s.Architecture != nil {
		img := *s.Architecture
		c.Architecture = &img
	}
	return c
}
