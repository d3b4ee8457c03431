package runfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/shardidx/internal/docmodel"
)

func writeSimpleRun(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(f)

	// term "apple" -> postings (3,1) sorted ascending by docid
	offset, err := w.WriteTermHeader("apple", DeadSentinel)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WritePosting(3, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.Backpatch(offset, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDelimiter(); err != nil {
		t.Fatal(err)
	}

	// term "banana" -> postings (1,2),(5,1)
	offset, err = w.WriteTermHeader("banana", DeadSentinel)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WritePosting(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePosting(5, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.Backpatch(offset, 2); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDelimiter(); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run-0")
	writeSimpleRun(t, path)

	r, err := Open(path)
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

	want := []docmodel.Posting{
		{Term: "apple", DocID: 3, Occurrence: 1},
		{Term: "banana", DocID: 1, Occurrence: 2},
		{Term: "banana", DocID: 5, Occurrence: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d postings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("posting[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReaderRejectsZeroTermLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(f)
	if _, err := w.WriteTermHeader("", 0); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, ok := r.Next(); ok {
		t.Fatalf("expected exhaustion on corrupt record")
	}
}

func TestReaderToleratesMissingTrailingDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no-delim")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(f)
	offset, err := w.WriteTermHeader("term", DeadSentinel)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WritePosting(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.Backpatch(offset, 1); err != nil {
		t.Fatal(err)
	}
	// No WriteDelimiter call: records may omit the decorative trailing LF.
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	p, ok := r.Next()
	if !ok || p.Term != "term" || p.DocID != 1 {
		t.Fatalf("expected one posting, got %+v ok=%v", p, ok)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("expected clean exhaustion at EOF")
	}
}
