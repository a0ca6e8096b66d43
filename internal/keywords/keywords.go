// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords extracts the salient terms of a free-text summary.
// A term survives when it is alphabetic, not a stop word, and tagged as a
// noun or adjective; surviving terms are ranked by normalized frequency.
package keywords

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DefaultTopN is the number of keywords returned when the extractor is not
// configured otherwise.
const DefaultTopN = 10

// Extractor ranks summary terms by term frequency. It is a pure function
// of its input plus the injected tagger.
type Extractor struct {
	Tagger Tagger
	// TopN caps the number of returned keywords (default DefaultTopN).
	TopN int
}

// keyword pairs a surviving term with its normalized frequency and the
// position of its first occurrence, used as the sort tie-break.
type keyword struct {
	term  string
	score float64
	first int
}

// Extract lowercases text, tags it, filters to noun/adjective tokens that
// are alphabetic non-stop-words, and returns the top-N terms ordered by
// descending normalized frequency. Ties keep first-occurrence order.
func (e *Extractor) Extract(text string) ([]string, error) {
	tokens, err := e.Tagger.Tag(strings.ToLower(text))
	if err != nil {
		return nil, fmt.Errorf("extracting keywords: %w", err)
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	total := 0

	for _, tok := range tokens {
		if !keepToken(tok) {
			continue
		}
		if _, seen := counts[tok.Text]; !seen {
			firstSeen[tok.Text] = total
		}
		counts[tok.Text]++
		total++
	}

	if total == 0 {
		return nil, nil
	}

	ranked := make([]keyword, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, keyword{
			term:  term,
			score: float64(count) / float64(total),
			first: firstSeen[term],
		})
	}

	// Descending by score; equal scores keep first-occurrence order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].first < ranked[j].first
	})

	topN := e.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	terms := make([]string, len(ranked))
	for i, kw := range ranked {
		terms[i] = kw.term
	}
	return terms, nil
}

// keepToken applies the survival filter: alphabetic, not a stop word, and
// tagged as a noun (NN*) or adjective (JJ*).
func keepToken(tok TaggedToken) bool {
	if !isAlphabetic(tok.Text) {
		return false
	}
	if IsStopWord(tok.Text) {
		return false
	}
	return strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ")
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
