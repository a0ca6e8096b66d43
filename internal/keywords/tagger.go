// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// TaggedToken is one linguistic token with its Penn Treebank part-of-speech
// tag (e.g. "NN", "NNS", "JJ").
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger tokenizes text and assigns part-of-speech tags. Implementations
// must be safe for concurrent use; the extractor holds a single instance
// for the life of the process.
type Tagger interface {
	Tag(text string) ([]TaggedToken, error)
}

// ProseTagger tags text with the prose NLP model. The model data is loaded
// by the prose package once per process and is read-only afterwards, so one
// ProseTagger serves all concurrent requests.
type ProseTagger struct{}

// Tag tokenizes and POS-tags text. Named-entity extraction is disabled;
// only tokenization and tagging run.
func (ProseTagger) Tag(text string) ([]TaggedToken, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	toks := doc.Tokens()
	tagged := make([]TaggedToken, 0, len(toks))
	for _, t := range toks {
		tagged = append(tagged, TaggedToken{Text: t.Text, Tag: t.Tag})
	}
	return tagged, nil
}
