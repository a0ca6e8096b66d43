// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores candidate documents against a query summary by
// cosine similarity of TF-IDF vectors. The vector space is rebuilt per
// request over {summary} ∪ {document texts}; nothing is shared across calls.
package relevance

import (
	"math"
	"strings"
	"unicode"

	"github.com/pdiddy/haircheck/internal/keywords"
)

// Scores returns a map from document index to the cosine similarity between
// the summary and that document, preserving input order in the index keys.
// The vocabulary is built in first-occurrence order over the summary followed
// by the documents, so identical inputs always produce identical scores.
// A document with no surviving terms has a zero vector and scores 0.
func Scores(summary string, docs []string) map[int]float64 {
	scores := make(map[int]float64, len(docs))
	if len(docs) == 0 {
		return scores
	}

	corpus := make([][]string, 0, len(docs)+1)
	corpus = append(corpus, tokenize(summary))
	for _, d := range docs {
		corpus = append(corpus, tokenize(d))
	}

	vocab, df := buildVocabulary(corpus)
	idf := inverseDocFrequency(df, len(corpus))

	summaryVec := vectorize(corpus[0], vocab, idf)
	for i, toks := range corpus[1:] {
		scores[i] = cosine(summaryVec, vectorize(toks, vocab, idf))
	}
	return scores
}

// buildVocabulary assigns each term an index in first-occurrence order and
// counts, per term, how many corpus entries contain it.
func buildVocabulary(corpus [][]string) (map[string]int, []int) {
	vocab := make(map[string]int)
	var df []int

	for _, toks := range corpus {
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := vocab[t]; !ok {
				vocab[t] = len(df)
				df = append(df, 0)
			}
			if _, ok := seen[t]; !ok {
				df[vocab[t]]++
				seen[t] = struct{}{}
			}
		}
	}
	return vocab, df
}

// inverseDocFrequency computes smoothed IDF weights:
// idf = ln((1+n)/(1+df)) + 1. Smoothing keeps every weight positive, so a
// term present in all entries still contributes.
func inverseDocFrequency(df []int, n int) []float64 {
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log(float64(1+n)/float64(1+d)) + 1
	}
	return idf
}

// vectorize builds the TF-IDF vector for one token sequence.
func vectorize(toks []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(idf))
	for _, t := range toks {
		vec[vocab[t]] += idf[vocab[t]]
	}
	return vec
}

// cosine returns the cosine similarity of two equal-length vectors. Either
// vector being all-zero yields 0.
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// tokenize lowercases s, splits on non-letter runes, and drops stop words.
func tokenize(s string) []string {
	var toks []string
	for _, field := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if keywords.IsStopWord(field) {
			continue
		}
		toks = append(toks, field)
	}
	return toks
}
