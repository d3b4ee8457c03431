// Package merge implements the k-way streaming merger of spec.md §4.6: a
// linear scan across the active run readers for one shard, delivering
// postings to a callback in global (term, docid) ascending order, followed
// by a sentinel call so the callback can flush its own state.
//
// Grounded on the original reduce() loop (original_source
// apps/ri/indexer/reduce/libreducer.c), which scans nfile readers choosing
// the minimum by memcmp'ing term bytes up to min(len_a, len_b) — the bug
// spec.md §9 calls out, since that treats any term as equal to a longer
// term that shares its full byte sequence as a prefix (e.g. "cat" vs
// "cats"). The fix required by spec.md §9 is to compare the full byte
// sequence and treat the shorter string as less on a tied prefix, which is
// exactly Go's built-in string "<" — so Less below needs no special-casing
// at all, only the comment recording why a naive memcmp would be wrong.
package merge

import "github.com/standardbeagle/shardidx/internal/docmodel"

// Source is anything that yields a forward stream of postings, satisfied by
// *runfile.Reader.
type Source interface {
	Next() (docmodel.Posting, bool)
}

// Less reports whether a sorts before b under the merger's total order:
// primary key term (full byte-sequence comparison — a prefix is less than
// the string it is a prefix of), secondary key docid ascending.
func Less(a, b docmodel.Posting) bool {
	if a.Term != b.Term {
		return a.Term < b.Term
	}
	return a.DocID < b.DocID
}

// active pairs a source with its primed current posting.
type active struct {
	src  Source
	post docmodel.Posting
}

// Run drives sources to exhaustion, calling callback once per posting in
// (term, docid) ascending order, then once more with ok=false as the
// terminal sentinel.
func Run(sources []Source, callback func(post docmodel.Posting, ok bool)) {
	items := make([]active, 0, len(sources))
	for _, s := range sources {
		if p, ok := s.Next(); ok {
			items = append(items, active{src: s, post: p})
		}
	}

	for len(items) > 0 {
		minIdx := 0
		for i := 1; i < len(items); i++ {
			if Less(items[i].post, items[minIdx].post) {
				minIdx = i
			}
		}

		callback(items[minIdx].post, true)

		if p, ok := items[minIdx].src.Next(); ok {
			items[minIdx].post = p
			continue
		}

		// Exhausted: shift the tail left over this slot (the original's
		// array-compaction approach, same O(k) cost as the rest of the scan).
		copy(items[minIdx:], items[minIdx+1:])
		items = items[:len(items)-1]
	}

	callback(docmodel.Posting{}, false)
}
