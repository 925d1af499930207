// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import "github.com/pdiddy/trialscout/pkg/types"

// Persona identifies a reader profile used to emphasize report sections.
type Persona string

const (
	PersonaClinician  Persona = "clinician"
	PersonaInvestor   Persona = "investor"
	PersonaResearcher Persona = "researcher"
	PersonaPatient    Persona = "patient"
)

// personaHighlights maps each persona to the deep-report sections its view
// emphasizes. Static by design; unknown personas get no highlights.
var personaHighlights = map[Persona][]string{
	PersonaClinician: {
		types.SectionEligibility,
		types.SectionEndpoints,
		types.SectionDesign,
		types.SectionRisks,
	},
	PersonaInvestor: {
		types.SectionSponsorTrackRecord,
		types.SectionCompetitiveContext,
		types.SectionTimeline,
		types.SectionOutlook,
	},
	PersonaResearcher: {
		types.SectionDesign,
		types.SectionEndpoints,
		types.SectionEnrollmentMetrics,
		types.SectionCompetitiveContext,
	},
	PersonaPatient: {
		types.SectionOverview,
		types.SectionEligibility,
		types.SectionTimeline,
	},
}

// Highlights returns the section keys emphasized for a persona, in display
// order. The result is a copy.
func Highlights(p Persona) []string {
	return append([]string(nil), personaHighlights[p]...)
}
