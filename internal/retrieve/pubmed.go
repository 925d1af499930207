// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trialscout/internal/httputil"
	"github.com/pdiddy/trialscout/pkg/types"
)

// PubMed eUtils endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedSummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// PubMedClient queries the NCBI eUtils literature index. Retrieval is a
// two-step call: esearch resolves the query to a PMID list, esummary fetches
// metadata for those PMIDs.
type PubMedClient struct {
	Client *http.Client
	cfg    types.PubMedConfig
}

// NewPubMedClient builds a PubMed client with a timeout-bounded HTTP client.
func NewPubMedClient(cfg types.PubMedConfig) *PubMedClient {
	return &PubMedClient{Client: httputil.NewClient(cfg.HTTPConfig), cfg: cfg}
}

// Search queries PubMed and returns publications in server order. Journal,
// author, and date-range filters are folded into the esearch term. A query
// with no matches returns an empty slice, not an error.
func (c *PubMedClient) Search(ctx context.Context, query string, filters types.PublicationFilters, order types.SortOrder) ([]types.Publication, error) {
	term := buildPubMedTerm(query, filters)
	if term == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	maxResults := c.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {fmt.Sprintf("%d", maxResults)},
	}
	if order == types.SortNewest {
		params.Set("sort", "pub_date")
	}
	if !filters.DateFrom.IsZero() || !filters.DateTo.IsZero() {
		params.Set("datetype", "pdat")
		if !filters.DateFrom.IsZero() {
			params.Set("mindate", filters.DateFrom.Format("2006/01/02"))
		}
		if !filters.DateTo.IsZero() {
			params.Set("maxdate", filters.DateTo.Format("2006/01/02"))
		}
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	var sr esearchResponse
	if err := httputil.GetJSON(ctx, c.Client, c.cfg.HTTPConfig, pubmedSearchBase+"?"+params.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}
	if len(sr.Result.IDList) == 0 {
		return []types.Publication{}, nil
	}

	return c.summaries(ctx, sr.Result.IDList)
}

// summaries fetches metadata for the given PMIDs and preserves their order.
func (c *PubMedClient) summaries(ctx context.Context, pmids []string) ([]types.Publication, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	var sr esummaryResponse
	if err := httputil.GetJSON(ctx, c.Client, c.cfg.HTTPConfig, pubmedSummaryBase+"?"+params.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("PubMed esummary request: %w", err)
	}

	pubs := make([]types.Publication, 0, len(pmids))
	for _, pmid := range pmids {
		raw, ok := sr.Result[pmid]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}

		pub := types.Publication{
			PMID:    pmid,
			Title:   doc.Title,
			Journal: doc.FullJournalName,
			PubDate: parsePubDate(doc.PubDate),
		}
		for _, a := range doc.Authors {
			pub.Authors = append(pub.Authors, a.Name)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// buildPubMedTerm folds the journal and author filters into the esearch term
// using field tags.
func buildPubMedTerm(query string, filters types.PublicationFilters) string {
	var parts []string
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, q)
	}
	if filters.Journal != "" {
		parts = append(parts, fmt.Sprintf("%s[ta]", filters.Journal))
	}
	if filters.Author != "" {
		parts = append(parts, fmt.Sprintf("%s[au]", filters.Author))
	}
	return strings.Join(parts, " AND ")
}

// parsePubDate parses PubMed's mixed-precision dates ("2023 Jan 15",
// "2023 Jan", "2023"). Unparseable values become the zero time.
func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006 Jan 2", "2006 Jan", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NCBI eUtils JSON structures. The esummary result is keyed by PMID with a
// sibling "uids" array, so it decodes as raw messages first.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	Title           string           `json:"title"`
	FullJournalName string           `json:"fulljournalname"`
	PubDate         string           `json:"pubdate"`
	Authors         []esummaryAuthor `json:"authors"`
}

type esummaryAuthor struct {
	Name string `json:"name"`
}
