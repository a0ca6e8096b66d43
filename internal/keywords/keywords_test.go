// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"reflect"
	"strings"
	"testing"
)

// fakeTagger tags from a fixed word→tag table so tests do not depend on
// model behavior. Unlisted words get the fallback tag "VB".
type fakeTagger struct {
	tags map[string]string
}

func (f fakeTagger) Tag(text string) ([]TaggedToken, error) {
	var toks []TaggedToken
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?")
		if w == "" {
			continue
		}
		tag, ok := f.tags[w]
		if !ok {
			tag = "VB"
		}
		toks = append(toks, TaggedToken{Text: w, Tag: tag})
	}
	return toks, nil
}

func TestExtract(t *testing.T) {
	tagger := fakeTagger{tags: map[string]string{
		"patients":  "NNS",
		"hair":      "NN",
		"density":   "NN",
		"treatment": "NN",
		"improved":  "JJ",
		"scalp":     "NN",
		"reported":  "VBD",
		"after":     "IN",
		"the":       "DT",
		"x9":        "NN",
	}}

	tests := []struct {
		name string
		text string
		topN int
		want []string
	}{
		{
			name: "nouns and adjectives survive, verbs and stop words do not",
			text: "Patients reported improved hair density after treatment.",
			topN: 10,
			want: []string{"patients", "improved", "hair", "density", "treatment"},
		},
		{
			name: "repeated terms rank first",
			text: "hair treatment hair density hair",
			topN: 10,
			want: []string{"hair", "treatment", "density"},
		},
		{
			name: "ties keep first-occurrence order",
			text: "scalp density treatment",
			topN: 10,
			want: []string{"scalp", "density", "treatment"},
		},
		{
			name: "topN caps the list",
			text: "hair hair density density treatment",
			topN: 2,
			want: []string{"hair", "density"},
		},
		{
			name: "non-alphabetic tokens are dropped",
			text: "x9 hair",
			topN: 10,
			want: []string{"hair"},
		},
		{
			name: "no surviving tokens yields nil",
			text: "the after reported",
			topN: 10,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Extractor{Tagger: tagger, TopN: tt.topN}
			got, err := e.Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	tagger := fakeTagger{tags: map[string]string{
		"hair": "NN", "density": "NN", "loss": "NN", "visible": "JJ",
		"scalp": "NN", "itching": "NN",
	}}
	e := &Extractor{Tagger: tagger, TopN: 4}

	text := "visible hair loss scalp itching hair density loss"
	first, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		got, err := e.Extract(text)
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Extract() = %v, want %v", i, got, first)
		}
	}
}

func TestExtractDefaultTopN(t *testing.T) {
	tags := make(map[string]string)
	var words []string
	for _, w := range []string{
		"alpha", "beta", "gamma", "delta", "epsilon", "zeta",
		"eta", "theta", "iota", "kappa", "lambda", "omega",
	} {
		tags[w] = "NN"
		words = append(words, w)
	}
	e := &Extractor{Tagger: fakeTagger{tags: tags}}

	got, err := e.Extract(strings.Join(words, " "))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(got) != DefaultTopN {
		t.Errorf("len(Extract()) = %d, want %d", len(got), DefaultTopN)
	}
}
