// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/haircheck/pkg/types"
)

// unknownISSN marks venues the works API reports without an ISSN.
const unknownISSN = "Unknown"

// VenueSet accumulates qualifying work contributions keyed by the exact
// venue display name. Records are created only on the first qualifying
// contribution, so every record has count ≥ 1 and the mean in Finalize
// never divides by zero.
type VenueSet struct {
	records   map[string]*types.VenueRecord
	sums      map[string]float64
	order     []string
	finalized bool
}

// NewVenueSet returns an empty accumulator.
func NewVenueSet() *VenueSet {
	return &VenueSet{
		records: make(map[string]*types.VenueRecord),
		sums:    make(map[string]float64),
	}
}

// Add records one qualifying location contribution: get-or-insert the venue
// record, then increment its count and relevance accumulator. Venue identity
// is the display name as-is; differently spelled names are distinct venues.
func (s *VenueSet) Add(meta VenueMeta, score float64) {
	rec, ok := s.records[meta.DisplayName]
	if !ok {
		issn := meta.ISSN
		if issn == "" {
			issn = unknownISSN
		}
		rec = &types.VenueRecord{
			Name: meta.DisplayName,
			Type: capitalize(meta.Type),
			IsOA: meta.IsOA,
			ISSN: issn,
		}
		s.records[meta.DisplayName] = rec
		s.order = append(s.order, meta.DisplayName)
	}
	rec.Count++
	s.sums[meta.DisplayName] += score
}

// Finalize converts each accumulated relevance sum into the arithmetic
// mean. It runs exactly once; later calls are no-ops.
func (s *VenueSet) Finalize() {
	if s.finalized {
		return
	}
	for name, rec := range s.records {
		rec.Relevance = s.sums[name] / float64(rec.Count)
	}
	s.finalized = true
}

// Len returns the number of venues collected.
func (s *VenueSet) Len() int { return len(s.records) }

// Ranked returns the finalized records sorted descending by the selected
// key. Ties keep the insertion order of each venue's first contribution.
func (s *VenueSet) Ranked(key SortKey) []types.VenueRecord {
	s.Finalize()

	out := make([]types.VenueRecord, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.records[name])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if key == SortByCount {
			return out[i].Count > out[j].Count
		}
		return out[i].Relevance > out[j].Relevance
	})
	return out
}

// Aggregate folds per-document similarity scores into per-venue records.
// A document below threshold contributes nothing. Each of a document's
// qualifying locations is an independent contribution, so one work listed
// in two venues counts once toward each.
func Aggregate(docs []Document, scores map[int]float64, threshold float64) *VenueSet {
	set := NewVenueSet()
	for i, doc := range docs {
		if scores[i] < threshold {
			continue
		}
		for _, loc := range doc.Locations {
			if loc.Source == nil {
				continue
			}
			if !retainedVenueType(loc.Source.Type) {
				continue
			}
			set.Add(*loc.Source, scores[i])
		}
	}
	set.Finalize()
	return set
}

// retainedVenueType reports whether the case-normalized venue kind is one
// the aggregation keeps. Repositories, ebook platforms and the like are
// discarded.
func retainedVenueType(t string) bool {
	switch strings.ToLower(t) {
	case "journal", "conference":
		return true
	default:
		return false
	}
}

// capitalize upper-cases the first rune ("journal" → "Journal").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
