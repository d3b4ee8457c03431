// Package docparser validates a document's UTF-8 body and streams its
// stemmed terms into an index, following spec.md §4.2.
//
// The Snowball English stemmer is treated as a black-box pure function
// (spec.md §1); we bind it to github.com/surgebase/porter2, the stemming
// library the teacher repo (internal/semantic/stemmer.go) already depends
// on for the same purpose.
package docparser

import (
	"github.com/surgebase/porter2"

	"github.com/standardbeagle/shardidx/internal/docmodel"
	"github.com/standardbeagle/shardidx/internal/tokenizer"
)

// Index is the subset of the in-memory index the parser needs: recording
// one occurrence of a term in a document.
type Index interface {
	Put(docID docmodel.DocID, term string)
}

// Parser drives one document's byte buffer through UTF-8 validation and the
// tokenizer, handing every stemmed token to an Index.
type Parser struct {
	index Index
}

// New creates a Parser that feeds stemmed terms into index.
func New(index Index) *Parser {
	return &Parser{index: index}
}

// tokenSink adapts a Parser+docID pair into a tokenizer.Sink.
type tokenSink struct {
	p     *Parser
	docID docmodel.DocID
}

func (s tokenSink) Token(scalars []rune) {
	if len(scalars) == 0 {
		return
	}
	term := porter2.Stem(string(scalars))
	if term == "" {
		return
	}
	s.p.index.Put(s.docID, term)
}

// Parse validates body as UTF-8 (keeping only the longest valid prefix) and
// streams the valid portion through the tokenizer, indexing every stemmed
// term under docID.
func (p *Parser) Parse(docID docmodel.DocID, body []byte) {
	valid, _ := ValidatePrefix(body)

	f := tokenizer.New(tokenSink{p: p, docID: docID})
	for _, r := range string(valid) {
		f.Feed(r)
	}
	f.End()
}
