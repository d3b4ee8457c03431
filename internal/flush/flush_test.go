package flush

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/standardbeagle/shardidx/internal/docmodel"
	"github.com/standardbeagle/shardidx/internal/memindex"
	"github.com/standardbeagle/shardidx/internal/metrics"
	"github.com/standardbeagle/shardidx/internal/runfile"
)

func TestRunProducesOneFilePerShardAndResetsIndex(t *testing.T) {
	dir := t.TempDir()
	idx := memindex.New()
	idx.Put(1, "apple")
	idx.Put(2, "apple")
	idx.Put(1, "banana")

	var markerOut bytes.Buffer
	markers, err := Run(idx, dir, 4, runfile.BufferSize, &markerOut)
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 4 {
		t.Fatalf("expected 4 markers, got %d", len(markers))
	}
	for _, m := range markers {
		if !strings.Contains(markerOut.String(), m.Filename) {
			t.Errorf("marker output missing filename %s", m.Filename)
		}
	}

	if idx.Len() != 0 || idx.DocCount() != 0 {
		t.Fatalf("expected index reset after flush, got Len=%d DocCount=%d", idx.Len(), idx.DocCount())
	}
}

func TestRunIsReadableAndSortedByReader(t *testing.T) {
	dir := t.TempDir()
	idx := memindex.New()
	idx.Put(1, "alpha")
	idx.Put(1, "beta")
	idx.Put(2, "beta")

	markers, err := Run(idx, dir, 1, runfile.BufferSize, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 1 {
		t.Fatalf("expected single shard, got %d", len(markers))
	}

	r, err := runfile.Open(dir + "/" + markers[0].Filename)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var got []docmodel.Posting
	for {
		p, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, p)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 postings, got %d: %+v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Term > got[i].Term {
			t.Errorf("terms out of order: %s before %s", got[i-1].Term, got[i].Term)
		}
	}
}

func TestRunIncrementsPostingsWrittenMetric(t *testing.T) {
	dir := t.TempDir()
	idx := memindex.New()
	idx.Put(1, "alpha")
	idx.Put(1, "beta")
	idx.Put(2, "beta")

	before := testutil.ToFloat64(metrics.PostingsWritten.WithLabelValues("flush"))
	if _, err := Run(idx, dir, 1, runfile.BufferSize, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	after := testutil.ToFloat64(metrics.PostingsWritten.WithLabelValues("flush"))
	if after != before+3 {
		t.Fatalf("PostingsWritten[flush] = %v, want %v", after, before+3)
	}
}

func TestRunHonorsCustomBufferSize(t *testing.T) {
	dir := t.TempDir()
	idx := memindex.New()
	idx.Put(1, "apple")
	idx.Put(2, "apple")

	// A buffer smaller than a single record forces multiple bufio flushes
	// per term, exercising NewWriterSize's wiring rather than the default.
	markers, err := Run(idx, dir, 1, 8, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	r, err := runfile.Open(dir + "/" + markers[0].Filename)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var got []docmodel.Posting
	for {
		p, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, p)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(got), got)
	}
}
