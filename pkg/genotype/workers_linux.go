//go:build linux

package genotype

import (
	"os"
	"runtime"
)

const cgroupCPUMax = "/sys/fs/cgroup/cpu.max"

// detectWorkers reads the cgroup v2 CPU quota so that containers with a
// CPU limit do not start one worker per host CPU
func detectWorkers() int {
	data, err := os.ReadFile(cgroupCPUMax)
	if err != nil {
		return 0
	}
	return quotaWorkers(string(data), runtime.NumCPU())
}
