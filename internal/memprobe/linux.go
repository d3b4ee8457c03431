package memprobe

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LinuxVmSizeEstimator reads /proc/self/status and returns the VmSize
// field in KB, exactly as the original mapper's get_memory_usage did
// (original_source apps/ri/indexer/map/parser.c). It is the estimator the
// testable memory-budget scenarios (spec.md §8 S3) are written against.
//
// The probe is best-effort: spec.md §4.3/§7 directs that an unavailable
// probe be treated as 0 rather than failing the mapper.
type LinuxVmSizeEstimator struct{}

func (LinuxVmSizeEstimator) EstimateKB() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "VmSize:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, nil
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, nil
		}
		return kb, nil
	}
	return 0, nil
}
