// Package memindex implements the mapper's in-memory inverted index,
// spec.md §4.3: a mapping term -> (docid -> occurrence) plus a shared set of
// docids (the design notes prefer a single vector of docids over copying the
// id into every inner mapping, since an id can appear under many terms).
//
// Grounded on the original parser_putword/dict_push_new_word pair
// (original_source apps/ri/indexer/map/parser.c): a term's first occurrence
// allocates an inner mapping, a repeat occurrence for the same docid
// increments the stored count, and a new docid under an existing term
// inserts a fresh entry. The design notes (spec.md §9) replace the original's
// balanced tree plus hash table with a single map, sorted into a slice only
// at flush time — simpler and avoids rebalancing during insert-heavy phases.
package memindex

import (
	"sort"

	"github.com/standardbeagle/shardidx/internal/docmodel"
)

// Index accumulates (term, docid) occurrence counts for one mapper
// generation. It is not safe for concurrent use; the mapper is
// single-threaded per spec.md §5.
type Index struct {
	terms    map[string]map[docmodel.DocID]docmodel.Occurrence
	docidSet map[docmodel.DocID]struct{}
	bytes    int64 // running estimate for the ByteCounterEstimator fallback
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		terms:    make(map[string]map[docmodel.DocID]docmodel.Occurrence),
		docidSet: make(map[docmodel.DocID]struct{}),
	}
}

// Put records one occurrence of term in docID.
func (idx *Index) Put(docID docmodel.DocID, term string) {
	idx.docidSet[docID] = struct{}{}

	inner, ok := idx.terms[term]
	if !ok {
		inner = make(map[docmodel.DocID]docmodel.Occurrence, 1)
		idx.terms[term] = inner
		idx.bytes += int64(len(term)) + 32
	}
	inner[docID]++
	idx.bytes += 4
}

// Len reports how many distinct terms are currently held.
func (idx *Index) Len() int {
	return len(idx.terms)
}

// DocCount reports how many distinct docids are currently held.
func (idx *Index) DocCount() int {
	return len(idx.docidSet)
}

// ByteEstimate is the fallback memory accounting scheme spec.md §4.3 allows
// when no platform memory probe is available: accumulated bytes ≥ limit
// triggers a flush with semantics identical to the resident-size probe.
func (idx *Index) ByteEstimate() int64 {
	return idx.bytes
}

// SortedTerms returns every term in ascending byte-lexicographic order, the
// traversal order the sorted-run flusher requires (spec.md §4.4).
func (idx *Index) SortedTerms() []string {
	out := make([]string, 0, len(idx.terms))
	for t := range idx.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SortedDocIDs returns every docid seen this generation in ascending order,
// computed once per flush and then reused for every term (spec.md §4.4).
func (idx *Index) SortedDocIDs() []docmodel.DocID {
	out := make([]docmodel.DocID, 0, len(idx.docidSet))
	for d := range idx.docidSet {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Occurrence looks up the occurrence count of (term, docID), returning
// false when the docid never occurred under that term.
func (idx *Index) Occurrence(term string, docID docmodel.DocID) (docmodel.Occurrence, bool) {
	inner, ok := idx.terms[term]
	if !ok {
		return 0, false
	}
	occ, ok := inner[docID]
	return occ, ok
}

// Reset clears all state, leaving the index indistinguishable from a
// freshly constructed one (spec.md §8 invariant 6, idempotent flush).
func (idx *Index) Reset() {
	idx.terms = make(map[string]map[docmodel.DocID]docmodel.Occurrence)
	idx.docidSet = make(map[docmodel.DocID]struct{})
	idx.bytes = 0
}
