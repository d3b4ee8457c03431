// Package corpus implements the archive reader of spec.md §4.1/§4.9: it
// extracts document bodies as byte buffers keyed by docid from a corpus
// archive. Documents are addressed by tar entry path; the docid is derived
// from that path per spec.md §3 ("derived by parsing the integer suffix of
// the archive entry path after the 4th byte").
//
// The corpus format itself — compressed archive of files, one per document —
// is not specified by the original source, which only shows the parser
// reading whatever bytes it is handed. tar is the obvious idiomatic choice
// for "many named byte blobs in one file" and gzip/zstd are the two
// compressions actually exercised elsewhere in the retrieved pack; zstd is
// read with github.com/klauspost/compress, since the teacher repo does not
// otherwise touch compression formats.
package corpus

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/standardbeagle/shardidx/internal/docmodel"
	stderrors "github.com/standardbeagle/shardidx/internal/errors"
)

// entryPrefixLen is the number of leading bytes of an archive entry's path
// skipped before parsing the docid suffix (spec.md §3).
const entryPrefixLen = 4

// Filters restricts which archive entries are read. A nil or empty Include
// matches everything; Exclude, when non-empty, drops any entry matching one
// of its patterns even if Include also matched. Patterns are doublestar
// globs matched against the full entry path.
type Filters struct {
	Include []string
	Exclude []string
}

func (f Filters) allows(path string) bool {
	if len(f.Include) > 0 {
		var matched bool
		for _, pat := range f.Include {
			if ok, _ := doublestar.Match(pat, path); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range f.Exclude {
		if ok, _ := doublestar.Match(pat, path); ok {
			return false
		}
	}
	return true
}

// Reader yields document bodies in archive order, applying Filters and
// deriving each document's docid from its entry path.
type Reader struct {
	tr      *tar.Reader
	closers []io.Closer
	filt    Filters
}

// Open opens path, auto-detecting gzip or zstd compression by file
// extension, and returns a Reader over its tar entries. Archive open
// failure is fatal per spec.md §7: the caller gets a typed error, there is
// no fallback.
func Open(path string, filt Filters) (*Reader, error) {
	f, err := openRaw(path)
	if err != nil {
		return nil, stderrors.NewArchiveError("open", path, err, false)
	}

	r := &Reader{filt: filt, closers: []io.Closer{f}}

	var body io.Reader = f
	switch archiveCompression(path) {
	case compressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			r.Close()
			return nil, stderrors.NewArchiveError("gzip-open", path, err, false)
		}
		r.closers = append(r.closers, gz)
		body = gz
	case compressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			r.Close()
			return nil, stderrors.NewArchiveError("zstd-open", path, err, false)
		}
		r.closers = append(r.closers, zstdCloser{zr})
		body = zr
	}

	r.tr = tar.NewReader(body)
	return r, nil
}

// Close releases every layer opened by Open.
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Next returns the next document admitted by Filters, or ok=false once the
// archive is exhausted. A read error mid-document is not fatal (spec.md
// §7's "Archive read error mid-document: skip document, continue"): Next
// skips the bad entry and tries the next one instead of returning an error.
func (r *Reader) Next() (docID docmodel.DocID, body []byte, ok bool) {
	for {
		hdr, err := r.tr.Next()
		if err != nil {
			return 0, nil, false
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !r.filt.allows(hdr.Name) {
			continue
		}

		id, err := docIDFromPath(hdr.Name)
		if err != nil {
			continue
		}

		buf, err := io.ReadAll(r.tr)
		if err != nil {
			continue
		}

		return id, buf, true
	}
}

// docIDFromPath implements spec.md §3's docid derivation: the integer
// suffix of the entry's filename after its 4th byte. "doc0000001" skips
// "doc0" and parses "000001" as 1. The suffix is taken from path.Base, not
// the full entry path, so documents nested under a directory (as admitted
// by Filters' "dir/**" include patterns) still parse.
func docIDFromPath(entryPath string) (docmodel.DocID, error) {
	name := path.Base(entryPath)
	if len(name) <= entryPrefixLen {
		return 0, fmt.Errorf("corpus: entry path %q too short for docid suffix", entryPath)
	}
	n, err := strconv.ParseUint(name[entryPrefixLen:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corpus: entry path %q has no integer docid suffix: %w", entryPath, err)
	}
	return docmodel.DocID(n), nil
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}
