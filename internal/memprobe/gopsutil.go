package memprobe

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// GopsutilEstimator wraps shirou/gopsutil/v3 (wired in from the
// rpcpool-yellowstone-faithful example's dependency set) to provide the
// same resident-size reading portably, satisfying the "portable
// implementation" note of spec.md §9 for platforms where
// LinuxVmSizeEstimator's /proc/self/status read is unavailable.
type GopsutilEstimator struct{}

func (GopsutilEstimator) EstimateKB() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, nil
	}
	info, err := p.MemoryInfo()
	if err != nil || info == nil {
		return 0, nil
	}
	return info.VMS / 1024, nil
}
