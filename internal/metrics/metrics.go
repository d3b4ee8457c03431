// Package metrics exposes Prometheus counters and gauges for the mapper
// and reducer, per SPEC_FULL.md §4.13.
//
// Grounded on the promauto-registered metric vars in
// rpcpool-yellowstone-faithful/metrics/metrics.go; this package keeps that
// style (package-level promauto vars, no manual registry plumbing) but
// scopes the metric set to what a mapper/reducer process actually emits.
package metrics

import (
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

var (
	DocumentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardidx_documents_processed_total",
		Help: "Documents the mapper has parsed and indexed.",
	})

	TermsFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardidx_terms_flushed_total",
		Help: "Distinct terms written across all mapper flushes.",
	})

	PostingsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardidx_postings_written_total",
		Help: "Postings written to run files, by stage.",
	}, []string{"stage"})

	MemoryEstimateKB = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shardidx_memory_estimate_kb",
		Help: "Most recent memory probe reading for the in-memory index.",
	})

	FlushCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardidx_flush_total",
		Help: "Number of times the mapper has flushed its index to disk.",
	})

	RunFilesMerged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardidx_run_files_merged_total",
		Help: "Run files consumed by the k-way merger, by source index within this reducer invocation.",
	}, []string{"source"})
)

// Handler returns the promhttp handler serving the default registry, for
// mounting on a diagnostics HTTP server (spec's "-metrics-addr" flag).
func Handler() http.Handler {
	return promhttp.Handler()
}

// Registry exposes the package's default metric registry for batch export.
// The zero value is ready to use; it gathers from the same
// prometheus.DefaultGatherer the promauto vars above register into.
type Registry struct{}

// WriteText gathers the current metric families and writes them in
// Prometheus text exposition format to w, grounded on
// prometheus/common/expfmt's encoder. This lets a mapper or reducer that
// exits before a scrape (no -metrics-addr, or a short batch run) still
// report what it did, e.g. to a log file alongside the run's diagnostics.
func (Registry) WriteText(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
