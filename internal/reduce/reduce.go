// Package reduce implements the reducer's consolidation writer, spec.md
// §4.7: given a stream of postings in ascending (term, docid) order — as
// produced by internal/merge — aggregate repeated occurrences for the same
// (term, docid) pair, and write one consolidated run-file record per term
// with its postings fully merged across the input run files.
//
// Grounded on the reduce callback / backpatch state machine in
// original_source apps/ri/indexer/reduce/libreducer.c (reduce_emit and its
// t/d/o/n bookkeeping), adapted to Go's defer-free error-returning style and
// to internal/runfile's Writer/backpatch API in place of raw fwrite+fseek.
package reduce

import (
	"fmt"

	"github.com/standardbeagle/shardidx/internal/docmodel"
	"github.com/standardbeagle/shardidx/internal/metrics"
	"github.com/standardbeagle/shardidx/internal/runfile"
)

// Consolidator accumulates postings delivered in ascending (term, docid)
// order and writes one consolidated record per term to an underlying
// runfile.Writer. It is driven by merge.Run's callback: pass Consume
// directly; the merge's terminal sentinel call writes the last pending
// posting and closes the final term record. Check Err afterwards.
type Consolidator struct {
	w *runfile.Writer

	open         bool
	term         string
	termOffset   int64
	postingCount uint32

	havePending bool
	pendingDoc  docmodel.DocID
	pendingOcc  uint32

	err error
}

// New returns a Consolidator writing consolidated records to w.
func New(w *runfile.Writer) *Consolidator {
	return &Consolidator{w: w}
}

// Consume folds one merged posting into the consolidator's state. It
// matches merge.Run's callback signature: ok is false exactly once, as the
// terminal sentinel, and triggers the final flush.
func (c *Consolidator) Consume(post docmodel.Posting, ok bool) {
	if c.err != nil {
		return
	}
	if !ok {
		c.err = c.finish()
		return
	}

	switch {
	case !c.open:
		c.startTerm(post.Term)
		c.startPosting(post.DocID, post.Occurrence)

	case post.Term != c.term:
		c.err = c.flushPending()
		if c.err != nil {
			return
		}
		c.err = c.closeTerm()
		if c.err != nil {
			return
		}
		c.startTerm(post.Term)
		c.startPosting(post.DocID, post.Occurrence)

	case post.DocID != c.pendingDoc:
		c.err = c.flushPending()
		if c.err != nil {
			return
		}
		c.startPosting(post.DocID, post.Occurrence)

	default:
		c.pendingOcc += uint32(post.Occurrence)
	}
}

// Err returns the first error Consume encountered, if any. Call after the
// merge that drives Consume has finished.
func (c *Consolidator) Err() error {
	return c.err
}

func (c *Consolidator) startTerm(term string) {
	c.term = term
	c.postingCount = 0
	c.open = true
	offset, err := c.w.WriteTermHeader(term, runfile.DeadSentinel)
	if err != nil {
		c.err = fmt.Errorf("reduce: write term header: %w", err)
		return
	}
	c.termOffset = offset
}

func (c *Consolidator) startPosting(docID docmodel.DocID, occ docmodel.Occurrence) {
	c.havePending = true
	c.pendingDoc = docID
	c.pendingOcc = uint32(occ)
}

func (c *Consolidator) flushPending() error {
	if !c.havePending {
		return nil
	}
	if err := c.w.WritePosting(uint32(c.pendingDoc), c.pendingOcc); err != nil {
		return fmt.Errorf("reduce: write posting: %w", err)
	}
	c.postingCount++
	metrics.PostingsWritten.WithLabelValues("reduce").Inc()
	c.havePending = false
	return nil
}

func (c *Consolidator) closeTerm() error {
	if !c.open {
		return nil
	}
	if err := c.w.Backpatch(c.termOffset, c.postingCount); err != nil {
		return fmt.Errorf("reduce: backpatch posting_count: %w", err)
	}
	if err := c.w.WriteDelimiter(); err != nil {
		return fmt.Errorf("reduce: write delimiter: %w", err)
	}
	c.open = false
	return nil
}

func (c *Consolidator) finish() error {
	if err := c.flushPending(); err != nil {
		return err
	}
	return c.closeTerm()
}
