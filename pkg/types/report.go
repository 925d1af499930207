// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DeepReport is the fixed-shape structured report produced by the
// deep-metrics oracle for a single trial. The ten sections are stable: the
// persona highlight map and the CLI renderer both key on them.
type DeepReport struct {
	// NCTID identifies the audited trial.
	NCTID string `json:"nct_id" yaml:"nct_id"`

	Overview           string `json:"overview" yaml:"overview"`
	Design             string `json:"design" yaml:"design"`
	Endpoints          string `json:"endpoints" yaml:"endpoints"`
	Eligibility        string `json:"eligibility" yaml:"eligibility"`
	EnrollmentMetrics  string `json:"enrollment_metrics" yaml:"enrollment_metrics"`
	Timeline           string `json:"timeline" yaml:"timeline"`
	SponsorTrackRecord string `json:"sponsor_track_record" yaml:"sponsor_track_record"`
	CompetitiveContext string `json:"competitive_context" yaml:"competitive_context"`
	Risks              string `json:"risks" yaml:"risks"`
	Outlook            string `json:"outlook" yaml:"outlook"`
}

// ReportSection is one keyed section of a DeepReport, in render order.
type ReportSection struct {
	Key  string `json:"key" yaml:"key"`
	Body string `json:"body" yaml:"body"`
}

// Section keys of a DeepReport.
const (
	SectionOverview           = "overview"
	SectionDesign             = "design"
	SectionEndpoints          = "endpoints"
	SectionEligibility        = "eligibility"
	SectionEnrollmentMetrics  = "enrollment_metrics"
	SectionTimeline           = "timeline"
	SectionSponsorTrackRecord = "sponsor_track_record"
	SectionCompetitiveContext = "competitive_context"
	SectionRisks              = "risks"
	SectionOutlook            = "outlook"
)

// Sections returns the report's sections keyed and ordered for rendering.
func (r DeepReport) Sections() []ReportSection {
	return []ReportSection{
		{SectionOverview, r.Overview},
		{SectionDesign, r.Design},
		{SectionEndpoints, r.Endpoints},
		{SectionEligibility, r.Eligibility},
		{SectionEnrollmentMetrics, r.EnrollmentMetrics},
		{SectionTimeline, r.Timeline},
		{SectionSponsorTrackRecord, r.SponsorTrackRecord},
		{SectionCompetitiveContext, r.CompetitiveContext},
		{SectionRisks, r.Risks},
		{SectionOutlook, r.Outlook},
	}
}

// ComparisonRow is one labeled row of a comparison matrix, with one value per
// compared trial.
type ComparisonRow struct {
	Label  string   `json:"label" yaml:"label"`
	Values []string `json:"values" yaml:"values"`
}

// ComparisonMatrix is the side-by-side comparison of 2-4 trials produced by
// the comparison oracle.
type ComparisonMatrix struct {
	// Headers identify the compared trials, in column order.
	Headers []string `json:"headers" yaml:"headers"`

	// Rows hold the labeled comparison dimensions.
	Rows []ComparisonRow `json:"rows" yaml:"rows"`

	// Summary is an optional narrative conclusion.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// PipelineGroup is one cluster of trials within a pipeline phase.
type PipelineGroup struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	TrialIDs    []string `json:"trial_ids" yaml:"trial_ids"`
}

// PipelinePhase is one development phase of the categorized pipeline view.
type PipelinePhase struct {
	Name   string          `json:"name" yaml:"name"`
	Groups []PipelineGroup `json:"groups" yaml:"groups"`
}

// PipelineView is the phase-grouped categorization of the current trial
// collection produced by the pipeline oracle.
type PipelineView struct {
	Phases []PipelinePhase `json:"phases" yaml:"phases"`
}

// ArchitectureImage is the opaque rendering produced by the architecture
// oracle. The core stores it untouched.
type ArchitectureImage struct {
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Data     []byte `json:"data" yaml:"data"`
}

// ChatMessage is one turn of the conversational assistant. History is reset
// on every search commit.
type ChatMessage struct {
	ID      string    `json:"id" yaml:"id"`
	Role    string    `json:"role" yaml:"role"`
	Content string    `json:"content" yaml:"content"`
	At      time.Time `json:"at" yaml:"at"`
}
