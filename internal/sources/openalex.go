// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/haircheck/internal/httputil"
	"github.com/pdiddy/haircheck/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

const (
	defaultPerPage = 200
	maxPerPage     = 200
)

// OpenAlexClient queries the OpenAlex Works API, the works-search oracle
// behind the venue finder.
type OpenAlexClient struct {
	Client *http.Client
	// MailTo is sent as mailto parameter for polite pool access.
	MailTo string
	// Now supplies the wall clock for the publication-year window.
	// Nil means time.Now; tests pin it.
	Now func() time.Time
}

// Search issues a single Works page request: keywords OR-joined as the
// search text, filtered to the configured publication-year window. Transient
// 429/5xx responses are retried with backoff before an error is returned.
func (c *OpenAlexClient) Search(ctx context.Context, kws []string, cfg types.SourcesConfig) ([]Document, error) {
	if len(kws) == 0 {
		return nil, fmt.Errorf("empty works query")
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := cfg.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{
		"search":   {strings.Join(kws, " OR ")},
		"per_page": {fmt.Sprintf("%d", perPage)},
		"page":     {fmt.Sprintf("%d", page)},
		"filter":   {"publication_year:" + c.yearWindow(cfg.YearsBack)},
	}
	if c.MailTo != "" {
		params.Set("mailto", c.MailTo)
	}

	reqURL := openAlexWorksBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	docs := make([]Document, 0, len(oar.Results))
	for _, work := range oar.Results {
		d := Document{
			Title:    work.Title,
			Abstract: reconstructAbstract(work.AbstractInvertedIndex),
		}
		for _, loc := range work.Locations {
			if loc.Source == nil {
				d.Locations = append(d.Locations, Location{})
				continue
			}
			d.Locations = append(d.Locations, Location{Source: &VenueMeta{
				DisplayName: loc.Source.DisplayName,
				Type:        loc.Source.Type,
				ISSN:        loc.Source.ISSNL,
				IsOA:        loc.Source.IsOA,
			}})
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// yearWindow builds the publication_year filter value: the current year and
// yearsBack years before it, pipe-separated ("2025|2026").
func (c *OpenAlexClient) yearWindow(yearsBack int) string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if yearsBack <= 0 {
		yearsBack = 1
	}

	year := now().Year()
	years := make([]string, 0, yearsBack+1)
	for y := year - yearsBack; y <= year; y++ {
		years = append(years, fmt.Sprintf("%d", y))
	}
	return strings.Join(years, "|")
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string             `json:"id"`
	Title                 string             `json:"title"`
	AbstractInvertedIndex map[string][]int   `json:"abstract_inverted_index"`
	Locations             []openAlexLocation `json:"locations"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	ISSNL       string `json:"issn_l"`
	IsOA        bool   `json:"is_oa"`
}
