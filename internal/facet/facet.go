// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facet derives filtered, ordered views of the published result
// collections. Everything here is a pure function over value inputs: the
// session's collections are never mutated, and recomputing a view with the
// same inputs yields the same output.
//
// See docs/ARCHITECTURE.md § Facet/Sort Engine.
package facet

import (
	"sort"
	"strings"

	"github.com/pdiddy/trialscout/pkg/types"
)

// SecondaryKey selects the local sort key used when the global order is
// SortNewest.
type SecondaryKey string

const (
	ByDate  SecondaryKey = "date"
	ByPhase SecondaryKey = "phase"
	ByTitle SecondaryKey = "title"
)

// TrialFacets holds the client-local trial filter selections, layered on top
// of whatever server-side filters shaped the published collection.
type TrialFacets struct {
	// Text matches case-insensitively against title, registry id, or sponsor.
	Text string

	// Phases keeps trials whose phase list intersects the selection.
	// Empty means no phase restriction.
	Phases []string

	// Statuses keeps trials whose status is in the selection. Empty means
	// no status restriction.
	Statuses []string

	// EnrollmentMin keeps trials with enrollment ≥ the threshold. A trial
	// with no recorded enrollment counts as 0.
	EnrollmentMin int

	// IndustryOnly drops trials whose sponsor name contains "university"
	// or "hospital" (case-insensitive).
	IndustryOnly bool

	// SortBy applies only when the global order is SortNewest.
	SortBy SecondaryKey
}

// VisibleTrials returns the filtered, ordered trial view. The input slice is
// left untouched.
func VisibleTrials(trials []types.Trial, f TrialFacets, order types.SortOrder) []types.Trial {
	out := make([]types.Trial, 0, len(trials))
	for _, t := range trials {
		if matchesTrial(t, f) {
			out = append(out, t)
		}
	}
	sortTrials(out, order, f.SortBy)
	return out
}

// VisiblePublications returns publications whose title or journal contains
// text (case-insensitive). No facet predicates apply to publications.
func VisiblePublications(pubs []types.Publication, text string) []types.Publication {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]types.Publication, 0, len(pubs))
	for _, p := range pubs {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Journal), needle) {
			out = append(out, p)
		}
	}
	return out
}

// matchesTrial is the conjunction of all active facet criteria.
func matchesTrial(t types.Trial, f TrialFacets) bool {
	if needle := strings.ToLower(strings.TrimSpace(f.Text)); needle != "" {
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.NCTID), needle) &&
			!strings.Contains(strings.ToLower(t.Sponsor), needle) {
			return false
		}
	}

	if len(f.Phases) > 0 && !intersects(t.Phases, f.Phases) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}

	enrollment := 0
	if t.EnrollmentCount != nil {
		enrollment = *t.EnrollmentCount
	}
	if enrollment < f.EnrollmentMin {
		return false
	}

	if f.IndustryOnly {
		sponsor := strings.ToLower(t.Sponsor)
		if strings.Contains(sponsor, "university") || strings.Contains(sponsor, "hospital") {
			return false
		}
	}

	return true
}

// sortTrials orders trials in place. Relevance sorts descending by score
// with missing scores as 0; ties break by registry id ascending so the view
// is stable across recomputation. Newest delegates to the secondary key.
func sortTrials(trials []types.Trial, order types.SortOrder, key SecondaryKey) {
	switch {
	case order == types.SortRelevance:
		sort.Slice(trials, func(i, j int) bool {
			si, sj := scoreOf(trials[i]), scoreOf(trials[j])
			if si != sj {
				return si > sj
			}
			return trials[i].NCTID < trials[j].NCTID
		})
	case key == ByPhase:
		sort.Slice(trials, func(i, j int) bool {
			return firstPhase(trials[i]) > firstPhase(trials[j])
		})
	case key == ByTitle:
		sort.Slice(trials, func(i, j int) bool {
			return trials[i].Title < trials[j].Title
		})
	default:
		// Newest by start date; the zero time sorts last.
		sort.Slice(trials, func(i, j int) bool {
			return trials[i].StartDate.After(trials[j].StartDate)
		})
	}
}

func scoreOf(t types.Trial) int {
	if t.RelevanceScore == nil {
		return 0
	}
	return *t.RelevanceScore
}

func firstPhase(t types.Trial) string {
	if len(t.Phases) == 0 {
		return ""
	}
	return t.Phases[0]
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
