// Package docmodel defines the data types shared by the mapper and reducer:
// document identifiers, terms, occurrence counts, and postings.
package docmodel

// DocID uniquely identifies a document within a corpus. It is derived by
// parsing the integer suffix of the archive entry path after its 4th byte
// (see corpus.docIDFromPath).
type DocID uint32

// MaxTokenScalars is the maximum number of Unicode scalars retained from one
// token before stemming; scalars beyond this are dropped, not split into a
// new token.
const MaxTokenScalars = 64

// Occurrence counts how many times a term occurs within a single document.
type Occurrence uint32

// Posting is a single (term, docid, occurrence) record.
type Posting struct {
	Term       string
	DocID      DocID
	Occurrence Occurrence
}
