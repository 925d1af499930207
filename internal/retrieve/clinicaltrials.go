// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries the two external content sources: the
// ClinicalTrials.gov registry and the PubMed literature index. Each client
// applies its server-side filters and sort order and returns an ordered
// entity list; there is no cross-source merging here.
//
// See docs/ARCHITECTURE.md § Retrieval.
package retrieve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trialscout/internal/httputil"
	"github.com/pdiddy/trialscout/pkg/types"
)

// registryAPIBase is the ClinicalTrials.gov v2 studies endpoint. Declared as
// a var so tests can substitute an httptest server.
var registryAPIBase = "https://clinicaltrials.gov/api/v2/studies"

// RegistryClient queries the ClinicalTrials.gov registry.
type RegistryClient struct {
	Client *http.Client
	cfg    types.RegistryConfig
}

// NewRegistryClient builds a registry client with a timeout-bounded HTTP client.
func NewRegistryClient(cfg types.RegistryConfig) *RegistryClient {
	return &RegistryClient{Client: httputil.NewClient(cfg.HTTPConfig), cfg: cfg}
}

// Search queries the registry and returns trials in server order. Status and
// phase filters are applied server-side; an empty filter set leaves that
// dimension unrestricted.
func (c *RegistryClient) Search(ctx context.Context, query string, filters types.TrialFilters, order types.SortOrder) ([]types.Trial, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty registry query")
	}

	maxResults := c.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{
		"query.term": {query},
		"pageSize":   {fmt.Sprintf("%d", maxResults)},
		"fields":     {registryFields},
	}

	if len(filters.Statuses) > 0 {
		params.Set("filter.overallStatus", strings.Join(filters.Statuses, ","))
	}
	if expr := phaseFilterExpr(filters.Phases); expr != "" {
		params.Set("filter.advanced", expr)
	}

	switch order {
	case types.SortNewest:
		params.Set("sort", "StartDate:desc")
	default:
		params.Set("sort", "@relevance")
	}

	var rr registryResponse
	reqURL := registryAPIBase + "?" + params.Encode()
	if err := httputil.GetJSON(ctx, c.Client, c.cfg.HTTPConfig, reqURL, &rr); err != nil {
		return nil, fmt.Errorf("registry API request: %w", err)
	}

	trials := make([]types.Trial, 0, len(rr.Studies))
	for _, s := range rr.Studies {
		p := s.ProtocolSection
		trial := types.Trial{
			NCTID:           p.Identification.NCTID,
			Title:           p.Identification.BriefTitle,
			Status:          p.Status.OverallStatus,
			Phases:          p.Design.Phases,
			Sponsor:         p.Sponsor.LeadSponsor.Name,
			StartDate:       parseRegistryDate(p.Status.StartDate.Date),
			CompletionDate:  parseRegistryDate(p.Status.CompletionDate.Date),
			EnrollmentCount: p.Design.Enrollment.Count,
		}
		trials = append(trials, trial)
	}
	return trials, nil
}

// phaseFilterExpr builds an Essie expression restricting results to the
// given phase codes (e.g. "AREA[Phase](PHASE2 OR PHASE3)").
func phaseFilterExpr(phases []string) string {
	if len(phases) == 0 {
		return ""
	}
	return "AREA[Phase](" + strings.Join(phases, " OR ") + ")"
}

// parseRegistryDate parses the registry's partial dates: full dates, month
// precision, or year precision. Unparseable values become the zero time.
func parseRegistryDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// registryFields limits the response to the modules the Trial type consumes.
const registryFields = "NCTId,BriefTitle,OverallStatus,Phase,LeadSponsorName,StartDate,CompletionDate,EnrollmentCount"

// ClinicalTrials.gov v2 JSON structures.
type registryResponse struct {
	Studies       []registryStudy `json:"studies"`
	NextPageToken string          `json:"nextPageToken"`
}

type registryStudy struct {
	ProtocolSection registryProtocol `json:"protocolSection"`
}

type registryProtocol struct {
	Identification registryIdentification `json:"identificationModule"`
	Status         registryStatus         `json:"statusModule"`
	Design         registryDesign         `json:"designModule"`
	Sponsor        registrySponsor        `json:"sponsorCollaboratorsModule"`
}

type registryIdentification struct {
	NCTID      string `json:"nctId"`
	BriefTitle string `json:"briefTitle"`
}

type registryStatus struct {
	OverallStatus  string             `json:"overallStatus"`
	StartDate      registryDateStruct `json:"startDateStruct"`
	CompletionDate registryDateStruct `json:"completionDateStruct"`
}

type registryDateStruct struct {
	Date string `json:"date"`
}

type registryDesign struct {
	Phases     []string           `json:"phases"`
	Enrollment registryEnrollment `json:"enrollmentInfo"`
}

type registryEnrollment struct {
	Count *int `json:"count"`
}

type registrySponsor struct {
	LeadSponsor registryLeadSponsor `json:"leadSponsor"`
}

type registryLeadSponsor struct {
	Name string `json:"name"`
}
