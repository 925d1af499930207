// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trialscout search core:
// registry trials, literature publications, the expanded search profile, and
// the server-side filter and sort parameters.
//
// See docs/ARCHITECTURE.md § Data Model.
package types

import "time"

// SortOrder selects the ordering applied by the retrieval sources and by the
// local view engine.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortNewest    SortOrder = "newest"
)

// SearchProfile is the expanded search vocabulary produced by the query
// optimizer for one search commit. It is immutable after creation: a new
// commit replaces the profile wholesale.
type SearchProfile struct {
	// Conditions lists disease or condition terms derived from the raw query.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// Interventions lists drug, device, or procedure terms.
	Interventions []string `json:"interventions" yaml:"interventions"`

	// Targets lists molecular target terms (e.g. "EGFR", "PD-L1").
	Targets []string `json:"targets" yaml:"targets"`

	// Synonyms lists alternate spellings and trade names for the above.
	Synonyms []string `json:"synonyms" yaml:"synonyms"`

	// SuggestedQuery is the optimizer's rewritten registry query. The
	// literature retriever intentionally keeps using the raw query.
	SuggestedQuery string `json:"suggested_query" yaml:"suggested_query"`
}

// TrialFilters holds the server-side registry filters applied by the trial
// retriever. Empty sets mean no filtering on that dimension.
type TrialFilters struct {
	// Statuses restricts results to the given overall-status codes
	// (e.g. "RECRUITING", "COMPLETED").
	Statuses []string `json:"statuses" yaml:"statuses"`

	// Phases restricts results to the given phase codes (e.g. "PHASE2").
	Phases []string `json:"phases" yaml:"phases"`
}

// PublicationFilters holds the server-side literature filters applied by the
// publication retriever.
type PublicationFilters struct {
	// DateFrom and DateTo bound the publication date range. Zero values
	// leave the corresponding bound open.
	DateFrom time.Time `json:"date_from" yaml:"date_from"`
	DateTo   time.Time `json:"date_to" yaml:"date_to"`

	// Journal narrows results to journals whose name contains this string.
	Journal string `json:"journal" yaml:"journal"`

	// Author narrows results to the given author name.
	Author string `json:"author" yaml:"author"`
}

// Trial is one clinical-study record from the registry. NCTID is unique
// within a result collection. RelevanceScore and ScoreRationale are unset
// until the background enrichment pass attaches them.
type Trial struct {
	// NCTID is the registry identifier (e.g. "NCT05012345").
	NCTID string `json:"nct_id" yaml:"nct_id"`

	// Title is the brief title as returned by the registry.
	Title string `json:"title" yaml:"title"`

	// Status is the overall-status code (e.g. "RECRUITING").
	Status string `json:"status" yaml:"status"`

	// Phases lists the phase codes the study spans.
	Phases []string `json:"phases" yaml:"phases"`

	// Sponsor is the lead sponsor name.
	Sponsor string `json:"sponsor" yaml:"sponsor"`

	// StartDate and CompletionDate are zero when the registry record omits them.
	StartDate      time.Time `json:"start_date" yaml:"start_date"`
	CompletionDate time.Time `json:"completion_date" yaml:"completion_date"`

	// EnrollmentCount is the planned or actual enrollment; nil when unrecorded.
	EnrollmentCount *int `json:"enrollment_count,omitempty" yaml:"enrollment_count,omitempty"`

	// RelevanceScore is a 0-100 relevance score attached by enrichment;
	// nil until scored.
	RelevanceScore *int `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`

	// ScoreRationale explains the attached score.
	ScoreRationale string `json:"score_rationale,omitempty" yaml:"score_rationale,omitempty"`
}

// Publication is one peer-reviewed article. PMID is unique within a result
// collection.
type Publication struct {
	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Journal is the full journal name.
	Journal string `json:"journal" yaml:"journal"`

	// PubDate is the publication date; zero when unparseable.
	PubDate time.Time `json:"pub_date" yaml:"pub_date"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// RelevanceScore is a 0-100 relevance score attached by enrichment;
	// nil until scored.
	RelevanceScore *int `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`

	// ScoreRationale explains the attached score.
	ScoreRationale string `json:"score_rationale,omitempty" yaml:"score_rationale,omitempty"`
}

// Relevance is one entry of the enrichment scorer's identifier → score
// mapping.
type Relevance struct {
	// Score is the 0-100 relevance score.
	Score int `json:"score" yaml:"score"`

	// Rationale is the scorer's explanation for the score.
	Rationale string `json:"rationale" yaml:"rationale"`
}
