// Package diag provides the mapper/reducer diagnostic log: a mutex-guarded
// writer that records flush/merge progress and the corruption diagnostics
// the run reader is required to log rather than fail on.
//
// Adapted from the teacher's internal/debug package. A mapper or reducer is
// a short-lived batch process rather than a long-running server, so unlike
// the teacher there is no MCP-mode suppression switch; output defaults to
// stderr and can be redirected or silenced by the caller.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects diagnostic output. Passing nil silences it entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// Log writes a component-tagged diagnostic line, e.g. Log("flush", "wrote shard %d", i).
func Log(component, format string, args ...interface{}) {
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// Corrupt logs a run-record corruption diagnostic per the error handling
// policy: these never abort the process, they only mark a reader exhausted.
func Corrupt(path string, offset int64, reason string) {
	Log("runfile", "corrupt record in %s at offset %s: %s", path, humanize.Comma(offset), reason)
}

// Bytes renders a byte count the way progress lines should report it,
// e.g. "3.2 MB" instead of a raw integer.
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}

// Fatal formats a fatal condition as an error for the caller to propagate;
// mapper/reducer mains turn this into a non-zero exit per spec.md §6.2.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	Log("fatal", "%s", msg)
	return fmt.Errorf("fatal: %s", msg)
}
