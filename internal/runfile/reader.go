package runfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/standardbeagle/shardidx/internal/diag"
	"github.com/standardbeagle/shardidx/internal/docmodel"
	stderrors "github.com/standardbeagle/shardidx/internal/errors"
)

// Reader is a restartable forward cursor over a run file, yielding
// (term, docid, occurrence) triples in the order they were written
// (spec.md §4.5). The returned term is borrowed: it is valid until the next
// call that crosses into a new term record.
type Reader struct {
	path string
	f    *os.File
	br   *bufio.Reader
	pos  int64

	term     string
	postings uint32
	current  uint32
	first    bool
	done     bool
}

// Open opens path for sequential reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		path: path,
		f:    f,
		br:   bufio.NewReaderSize(f, BufferSize),
		first: true,
	}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err == nil {
		r.pos++
	}
	return b, err
}

func (r *Reader) readUint32() (uint32, error) {
	var buf [4]byte
	n, err := io.ReadFull(r.br, buf[:])
	r.pos += int64(n)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *Reader) readExact(n uint32) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.br, buf)
	r.pos += int64(read)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// fail marks the reader exhausted and logs the corruption diagnostic
// required by spec.md §4.5/§7; it never returns an error to the caller, it
// just makes Next report exhaustion. The RunFileError is never propagated —
// spec.md policy is log-and-skip, not abort — but building it keeps the
// diagnostic's shape (path, offset, reason) consistent with the rest of the
// error-reporting surface.
func (r *Reader) fail(reason string) {
	err := stderrors.NewRunFileError(r.path, r.pos, reason)
	diag.Corrupt(err.Path, err.Offset, err.Reason)
	r.done = true
}

// Next advances the cursor and returns the next posting, or ok=false when
// the reader is exhausted (clean EOF or corruption).
func (r *Reader) Next() (post docmodel.Posting, ok bool) {
	if r.done {
		return docmodel.Posting{}, false
	}

	if r.first || r.current == r.postings {
		if !r.first {
			delim, err := r.readByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					r.done = true
					return docmodel.Posting{}, false
				}
				r.fail("error reading trailing delimiter: " + err.Error())
				return docmodel.Posting{}, false
			}
			if delim != LF {
				r.fail("missing trailing LF delimiter")
				return docmodel.Posting{}, false
			}
		}
		r.first = false

		termLen, err := r.readUint32()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				return docmodel.Posting{}, false
			}
			r.fail("error reading term_length: " + err.Error())
			return docmodel.Posting{}, false
		}
		if termLen == 0 || termLen > MaxTermLen {
			r.fail("implausible term_length")
			return docmodel.Posting{}, false
		}

		termBytes, err := r.readExact(termLen)
		if err != nil {
			r.fail("truncated term bytes")
			return docmodel.Posting{}, false
		}
		r.term = string(termBytes)

		postings, err := r.readUint32()
		if err != nil {
			r.fail("truncated posting_count")
			return docmodel.Posting{}, false
		}
		r.postings = postings
		r.current = 0
	}

	docID, err := r.readUint32()
	if err != nil {
		r.fail("truncated docid")
		return docmodel.Posting{}, false
	}
	occ, err := r.readUint32()
	if err != nil {
		r.fail("truncated occurrence")
		return docmodel.Posting{}, false
	}
	r.current++

	return docmodel.Posting{
		Term:       r.term,
		DocID:      docmodel.DocID(docID),
		Occurrence: docmodel.Occurrence(occ),
	}, true
}
