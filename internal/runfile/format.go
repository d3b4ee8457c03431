// Package runfile implements the on-disk binary record format shared by run
// files (mapper output) and shard outputs (reducer output), spec.md §6.1:
//
//	u32   term_length          # bytes
//	u8[]  term                  # term_length bytes, UTF-8
//	u32   posting_count         # N
//	N × { u32 docid; u32 occurrence }
//	u8    0x0A (LF)             # trailing delimiter
//
// All integers are little-endian. Reader requires the trailing LF between
// records and treats any other byte in its place as corruption; only the
// final record of a file may omit it, since a clean EOF is accepted there.
package runfile

const (
	// MaxTermLen bounds a plausible term_length; a larger value read from a
	// record marks the file as corrupt (spec.md §4.5/§7).
	MaxTermLen = 100

	// LF is the trailing record delimiter.
	LF = 0x0A

	// DeadSentinel is written in place of posting_count until the real
	// count is known. It lets a partially-written shard output be detected
	// during recovery; a well-formed file never has this value as its
	// final posting_count (spec.md §4.7).
	DeadSentinel uint32 = 0xDEADC0DE

	// BufferSize is the per-shard-output I/O buffer size spec.md §5
	// mandates to cut syscalls.
	BufferSize = 8192
)
