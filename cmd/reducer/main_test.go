package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/standardbeagle/shardidx/internal/docmodel"
	"github.com/standardbeagle/shardidx/internal/runfile"
)

var testBinaryPath string

func TestMain(m *testing.M) {
	tempBinary := filepath.Join(os.TempDir(), "reducer-test-"+fmt.Sprintf("%d", time.Now().UnixNano()))

	buildCmd := exec.Command("go", "build", "-o", tempBinary, ".")
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut
	if err := buildCmd.Run(); err != nil {
		fmt.Printf("failed to build reducer for testing: %v\n%s\n", err, buildOut.String())
		os.Exit(1)
	}
	testBinaryPath = tempBinary

	code := m.Run()
	os.Remove(testBinaryPath)
	os.Exit(code)
}

func writeRun(t *testing.T, path string, terms map[string][][2]uint32) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := runfile.NewWriter(f)
	for _, term := range sortedKeys(terms) {
		postings := terms[term]
		offset, err := w.WriteTermHeader(term, runfile.DeadSentinel)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range postings {
			if err := w.WritePosting(p[0], p[1]); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Backpatch(offset, uint32(len(postings))); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteDelimiter(); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func sortedKeys(m map[string][][2]uint32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TestReducerMergesTwoRunFilesWithTieBreak is scenario S6 of spec.md §8,
// exercised against the built reducer binary end to end.
func TestReducerMergesTwoRunFilesWithTieBreak(t *testing.T) {
	dir := t.TempDir()
	run1 := filepath.Join(dir, "run1")
	run2 := filepath.Join(dir, "run2")
	out := filepath.Join(dir, "shard-output")

	writeRun(t, run1, map[string][][2]uint32{"apple": {{5, 1}}})
	writeRun(t, run2, map[string][][2]uint32{"apple": {{3, 1}}})

	cmd := exec.Command(testBinaryPath, out, run1, run2)
	var cmdOut bytes.Buffer
	cmd.Stdout = &cmdOut
	cmd.Stderr = &cmdOut
	if err := cmd.Run(); err != nil {
		t.Fatalf("reducer run failed: %v\n%s", err, cmdOut.String())
	}

	r, err := runfile.Open(out)
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
	if got[0].DocID != 3 || got[1].DocID != 5 {
		t.Fatalf("expected docid 3 before 5, got %+v", got)
	}
}
