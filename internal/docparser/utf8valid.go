package docparser

import "unicode/utf8"

// ValidatePrefix returns the longest valid UTF-8 prefix of b and its length.
// Bytes from the first invalid sequence onward are discarded, matching the
// original mapper's text_validate_utf8 (original_source
// apps/ri/indexer/map/parser.c), which keeps g_utf8_validate's valid prefix
// and drops the remainder of the buffer outright rather than resyncing past
// the bad sequence.
func ValidatePrefix(b []byte) (prefix []byte, validLen int) {
	for validLen < len(b) {
		r, size := utf8.DecodeRune(b[validLen:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		validLen += size
	}
	return b[:validLen], validLen
}
