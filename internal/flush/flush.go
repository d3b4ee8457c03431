// Package flush implements the mapper's sorted-run flusher, spec.md §4.4:
// serializing the in-memory index into one file per reducer shard, in
// ascending term order, with backpatched posting_count fields.
//
// Grounded on the original parser_flushdict/traverse_node pair
// (original_source apps/ri/indexer/map/parser.c), adapted to partition-by-
// term-hash (internal/partition) rather than the original's per-document
// broadcast, per the chosen contract in spec.md §4.4.
package flush

import (
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/shardidx/internal/diag"
	stderrors "github.com/standardbeagle/shardidx/internal/errors"
	"github.com/standardbeagle/shardidx/internal/fileid"
	"github.com/standardbeagle/shardidx/internal/memindex"
	"github.com/standardbeagle/shardidx/internal/metrics"
	"github.com/standardbeagle/shardidx/internal/partition"
	"github.com/standardbeagle/shardidx/internal/runfile"
)

// Marker describes one shard file produced by a flush, matching the
// "=> <filename> <shard_idx> <byte_length>" stdout protocol of spec.md §6.2.
type Marker struct {
	Filename string
	ShardIdx uint32
	Bytes    int64
}

// Run writes one run file per shard under outputDir for the current
// contents of idx, prints the resulting markers to stdout (or to w, when
// non-nil, for testability), and resets idx so it is indistinguishable
// from a freshly constructed index (spec.md §8 invariant 6). bufferSize sets
// the per-shard-output I/O buffer (config.Config.BufferSizeBytes); callers
// that don't care about the knob can pass runfile.BufferSize.
func Run(idx *memindex.Index, outputDir string, numReducers uint32, bufferSize int, w io.Writer) ([]Marker, error) {
	if numReducers == 0 {
		return nil, fmt.Errorf("flush: numReducers must be > 0")
	}
	if bufferSize <= 0 {
		bufferSize = runfile.BufferSize
	}

	writers := make([]*runfile.Writer, numReducers)
	names := make([]string, numReducers)
	for i := uint32(0); i < numReducers; i++ {
		f, name, err := fileid.Create(outputDir, i)
		if err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("flush: allocate shard %d output: %w", i, err)
		}
		writers[i] = runfile.NewWriterSize(f, bufferSize)
		names[i] = name
	}

	docids := idx.SortedDocIDs()

	for _, term := range idx.SortedTerms() {
		shard := partition.ShardFor(term, numReducers)
		fw := writers[shard]

		offset, err := fw.WriteTermHeader(term, runfile.DeadSentinel)
		if err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("flush: write term header: %w", err)
		}

		var count uint32
		for _, d := range docids {
			occ, ok := idx.Occurrence(term, d)
			if !ok {
				continue
			}
			if err := fw.WritePosting(uint32(d), uint32(occ)); err != nil {
				closeAll(writers)
				return nil, fmt.Errorf("flush: write posting: %w", err)
			}
			count++
			metrics.PostingsWritten.WithLabelValues("flush").Inc()
		}

		if err := fw.Backpatch(offset, count); err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("flush: backpatch posting_count: %w", err)
		}
		if err := fw.WriteDelimiter(); err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("flush: write delimiter: %w", err)
		}
	}

	markers := make([]Marker, numReducers)
	var closeErrs []error
	for i := uint32(0); i < numReducers; i++ {
		pos := writers[i].Pos()
		if err := writers[i].Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("shard %d (%s): %w", i, names[i], err))
			continue
		}
		markers[i] = Marker{Filename: names[i], ShardIdx: i, Bytes: pos}
	}
	if merr := stderrors.NewMultiError(closeErrs); merr != nil {
		return nil, fmt.Errorf("flush: closing shard outputs: %w", merr)
	}

	if w == nil {
		w = os.Stdout
	}
	for _, m := range markers {
		fmt.Fprintf(w, "=> %s %d %d\n", m.Filename, m.ShardIdx, m.Bytes)
	}
	diag.Log("flush", "wrote %d shard files, %d terms, %d docs", numReducers, idx.Len(), idx.DocCount())

	idx.Reset()
	return markers, nil
}

// closeAll best-effort closes every writer during an abort, collecting any
// close failures into a MultiError so they are logged rather than dropped.
// The caller is already returning a different, primary error; this one is
// diagnostic only.
func closeAll(writers []*runfile.Writer) {
	var errs []error
	for _, w := range writers {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if merr := stderrors.NewMultiError(errs); merr != nil {
		diag.Log("flush", "closing shard outputs after abort: %v", merr)
	}
}
