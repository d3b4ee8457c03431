package memprobe

// ByteCounterEstimator implements the explicit byte-accounting fallback
// spec.md §4.3 permits on platforms where neither the Linux VmSize probe
// nor gopsutil is available: flush when accumulated bytes reach the limit,
// identical semantics to the resident-size probes, just sourced from the
// index's own running total rather than the OS.
type ByteCounterEstimator struct {
	// Source reports the index's current byte estimate, e.g.
	// memindex.Index.ByteEstimate.
	Source func() int64
}

func (b ByteCounterEstimator) EstimateKB() (uint64, error) {
	if b.Source == nil {
		return 0, nil
	}
	n := b.Source()
	if n < 0 {
		return 0, nil
	}
	return uint64(n) / 1024, nil
}
