package merge

import (
	"os"
	"testing"

	"github.com/standardbeagle/shardidx/internal/docmodel"
	"github.com/standardbeagle/shardidx/internal/runfile"
)

// fakeSource replays a fixed slice of postings, for tests that don't need a
// real run file on disk.
type fakeSource struct {
	postings []docmodel.Posting
	idx      int
}

func (f *fakeSource) Next() (docmodel.Posting, bool) {
	if f.idx >= len(f.postings) {
		return docmodel.Posting{}, false
	}
	p := f.postings[f.idx]
	f.idx++
	return p, true
}

func TestLessComparesFullTermBeforeDocID(t *testing.T) {
	// "cat" is a prefix of "cats"; the original's memcmp-to-shorter-length
	// bug would call these equal. The fix treats the shorter string as less.
	a := docmodel.Posting{Term: "cat", DocID: 9}
	b := docmodel.Posting{Term: "cats", DocID: 1}
	if !Less(a, b) {
		t.Fatalf("expected %q < %q", a.Term, b.Term)
	}
	if Less(b, a) {
		t.Fatalf("expected %q not < %q", b.Term, a.Term)
	}
}

func TestLessBreaksTiesByDocID(t *testing.T) {
	a := docmodel.Posting{Term: "apple", DocID: 3}
	b := docmodel.Posting{Term: "apple", DocID: 5}
	if !Less(a, b) {
		t.Fatalf("expected docid 3 before docid 5 on equal term")
	}
}

// TestRunMergesAndTieBreaksByDocID is scenario S6: two runs each contributing
// a posting for "apple" must merge with the lower docid first.
func TestRunMergesAndTieBreaksByDocID(t *testing.T) {
	s1 := &fakeSource{postings: []docmodel.Posting{
		{Term: "apple", DocID: 5, Occurrence: 1},
		{Term: "banana", DocID: 2, Occurrence: 1},
	}}
	s2 := &fakeSource{postings: []docmodel.Posting{
		{Term: "apple", DocID: 3, Occurrence: 1},
	}}

	var got []docmodel.Posting
	Run([]Source{s1, s2}, func(p docmodel.Posting, ok bool) {
		if !ok {
			return
		}
		got = append(got, p)
	})

	want := []docmodel.Posting{
		{Term: "apple", DocID: 3, Occurrence: 1},
		{Term: "apple", DocID: 5, Occurrence: 1},
		{Term: "banana", DocID: 2, Occurrence: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d postings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("postings[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRunCallsCallbackWithSentinelAtEnd(t *testing.T) {
	s := &fakeSource{postings: []docmodel.Posting{{Term: "a", DocID: 1, Occurrence: 1}}}

	var calls int
	var sawSentinel bool
	Run([]Source{s}, func(p docmodel.Posting, ok bool) {
		calls++
		if !ok {
			sawSentinel = true
		}
	})

	if !sawSentinel {
		t.Fatal("expected a final sentinel call")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls (1 posting + sentinel), got %d", calls)
	}
}

func TestRunOverRealRunFilesPreservesGlobalOrder(t *testing.T) {
	dir := t.TempDir()

	f1, err := os.Create(dir + "/run1")
	if err != nil {
		t.Fatal(err)
	}
	w1 := runfile.NewWriter(f1)
	off, _ := w1.WriteTermHeader("apple", runfile.DeadSentinel)
	w1.WritePosting(5, 1)
	w1.Backpatch(off, 1)
	w1.WriteDelimiter()
	w1.Close()

	f2, err := os.Create(dir + "/run2")
	if err != nil {
		t.Fatal(err)
	}
	w2 := runfile.NewWriter(f2)
	off, _ = w2.WriteTermHeader("apple", runfile.DeadSentinel)
	w2.WritePosting(3, 1)
	w2.Backpatch(off, 1)
	w2.WriteDelimiter()
	w2.Close()

	r1, err := runfile.Open(dir + "/run1")
	if err != nil {
		t.Fatal(err)
	}
	defer r1.Close()
	r2, err := runfile.Open(dir + "/run2")
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()

	var got []docmodel.Posting
	Run([]Source{r1, r2}, func(p docmodel.Posting, ok bool) {
		if ok {
			got = append(got, p)
		}
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(got), got)
	}
	if got[0].DocID != 3 || got[1].DocID != 5 {
		t.Fatalf("expected docid 3 before 5, got %+v", got)
	}
}
