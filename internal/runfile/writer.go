package runfile

import (
	"bufio"
	"encoding/binary"
	"os"
)

// Writer sequentially encodes term records to an underlying file, buffered
// per spec.md §5 (an 8 KiB user-supplied buffer per shard output), and
// supports the backpatch pattern: a placeholder posting_count is written up
// front and overwritten once the real count is known.
//
// A Writer tracks its own logical position instead of asking the OS for the
// file offset, since most writes go through a bufio.Writer and haven't
// necessarily reached the file yet.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	pos int64
}

// NewWriter wraps f with the spec-mandated default buffer size.
func NewWriter(f *os.File) *Writer {
	return NewWriterSize(f, BufferSize)
}

// NewWriterSize wraps f with an operator-supplied buffer size (config.Config
// BufferSizeBytes), for callers that read the knob from .shardidx.kdl rather
// than taking the default.
func NewWriterSize(f *os.File, size int) *Writer {
	return &Writer{f: f, bw: bufio.NewWriterSize(f, size)}
}

// Pos returns the writer's current logical offset into the file.
func (w *Writer) Pos() int64 { return w.pos }

func (w *Writer) writeUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := w.bw.Write(buf[:]); err != nil {
		return err
	}
	w.pos += 4
	return nil
}

// WriteTermHeader writes the term_length and term bytes, then a placeholder
// posting_count, returning the file offset of that placeholder so it can
// later be overwritten with Backpatch.
func (w *Writer) WriteTermHeader(term string, placeholder uint32) (offset int64, err error) {
	if err = w.writeUint32(uint32(len(term))); err != nil {
		return 0, err
	}
	if _, err = w.bw.WriteString(term); err != nil {
		return 0, err
	}
	w.pos += int64(len(term))

	offset = w.pos
	if err = w.writeUint32(placeholder); err != nil {
		return 0, err
	}
	return offset, nil
}

// WritePosting appends one (docid, occurrence) pair.
func (w *Writer) WritePosting(docID, occurrence uint32) error {
	if err := w.writeUint32(docID); err != nil {
		return err
	}
	return w.writeUint32(occurrence)
}

// WriteDelimiter appends the trailing LF that closes a term record.
func (w *Writer) WriteDelimiter() error {
	if err := w.bw.WriteByte(LF); err != nil {
		return err
	}
	w.pos++
	return nil
}

// Backpatch overwrites the 4 bytes at offset (previously returned by
// WriteTermHeader) with count. It flushes all buffered output first so the
// placeholder is already in the file, then overwrites it with WriteAt, which
// leaves the writer's logical position, and so later buffered writes,
// unchanged.
func (w *Writer) Backpatch(offset int64, count uint32) error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], count)
	if _, err := w.f.WriteAt(buf[:], offset); err != nil {
		return err
	}
	return nil
}

// Flush forces any buffered bytes to the underlying file.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
