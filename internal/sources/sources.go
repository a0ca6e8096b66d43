// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources ranks publication venues for a case summary. The pipeline
// extracts keywords from the summary, runs one OpenAlex works query, scores
// every returned work against the summary by TF-IDF cosine similarity, folds
// qualifying works into per-venue records, and orders them by a selectable
// key. Everything is request-scoped; no state survives a call.
package sources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pdiddy/haircheck/internal/keywords"
	"github.com/pdiddy/haircheck/internal/relevance"
	"github.com/pdiddy/haircheck/pkg/types"
)

// DefaultSimilarityThreshold is the minimum summary-to-work similarity for
// a work to contribute to any venue.
const DefaultSimilarityThreshold = 0.2

// ErrEmptySummary reports a blank or whitespace-only summary. Surfaces as a
// client error before any network work happens.
var ErrEmptySummary = errors.New("summary is empty")

// ErrUpstream reports a works-search failure: network error, non-2xx
// response, or malformed payload. Callers can map it to an upstream-
// unavailable response distinct from internal failures.
var ErrUpstream = errors.New("works search unavailable")

// Document is one candidate work returned by the search oracle.
type Document struct {
	Title    string
	Abstract string
	// Locations lists where the work appears; a location may or may not
	// name a source venue.
	Locations []Location
}

// Location is one hosting record of a work.
type Location struct {
	Source *VenueMeta
}

// VenueMeta describes a publishing venue as the works API reports it.
type VenueMeta struct {
	DisplayName string
	Type        string
	ISSN        string
	IsOA        bool
}

// Text returns the document text used for similarity scoring: title and
// abstract concatenated. A missing abstract is treated as empty, not as
// an error.
func (d Document) Text() string {
	return strings.TrimSpace(d.Title + " " + d.Abstract)
}

// SortKey selects the venue ranking order.
type SortKey string

const (
	// SortByRelevance orders venues by descending mean similarity (default).
	SortByRelevance SortKey = "relevance"
	// SortByCount orders venues by descending contribution count.
	SortByCount SortKey = "count"
)

// ParseSortKey validates a sort_by parameter. Empty input selects the
// default relevance ordering.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByRelevance, nil
	case SortByRelevance, SortByCount:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("sort_by must be %q or %q, got %q", SortByRelevance, SortByCount, s)
	}
}

// Result holds the finder output ready for serialization.
type Result struct {
	Keywords []string            `json:"keywords"`
	Venues   []types.VenueRecord `json:"sources"`
}

// Finder composes the pipeline around the works-search oracle.
type Finder struct {
	Extractor *keywords.Extractor
	Client    *OpenAlexClient
	Config    types.SourcesConfig
	Logger    *log.Logger
}

// Find runs the full pipeline for one summary. It rejects empty summaries
// before touching the network, propagates oracle failures as ErrUpstream,
// and returns an empty venue list (not an error) when nothing qualifies.
func (f *Finder) Find(ctx context.Context, summary string, key SortKey) (Result, error) {
	if strings.TrimSpace(summary) == "" {
		return Result{}, ErrEmptySummary
	}

	kws, err := f.Extractor.Extract(summary)
	if err != nil {
		return Result{}, fmt.Errorf("extracting keywords: %w", err)
	}
	if len(kws) == 0 {
		// Nothing searchable survived the POS filter. Not an error: the
		// caller gets its keywords (none) and an empty venue list.
		return Result{Keywords: kws, Venues: []types.VenueRecord{}}, nil
	}

	docs, err := f.Client.Search(ctx, kws, f.Config)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if f.Logger != nil {
		f.Logger.Printf("query %q returned %d works", strings.Join(kws, " OR "), len(docs))
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text()
	}
	scores := relevance.Scores(summary, texts)

	threshold := f.Config.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	set := Aggregate(docs, scores, threshold)
	return Result{Keywords: kws, Venues: set.Ranked(key)}, nil
}
