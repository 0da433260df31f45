package genotype

import (
	"runtime"
	"strconv"
	"strings"
)

// DefaultWorkers returns the worker count used when none is configured:
// the CPUs available to this process, honouring container CPU limits where
// the platform exposes them.
func DefaultWorkers() int {
	if n := detectWorkers(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// quotaWorkers converts a cgroup v2 cpu.max line ("max 100000" or
// "200000 100000") into a CPU count, capped at numCPU. It returns 0 when
// there is no limit or the line cannot be parsed.
func quotaWorkers(cpuMax string, numCPU int) int {
	fields := strings.Fields(cpuMax)
	if len(fields) != 2 || fields[0] == "max" {
		return 0
	}
	quota, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || quota <= 0 {
		return 0
	}
	period, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || period <= 0 {
		return 0
	}

	n := int(quota / period)
	if float64(n)*period < quota {
		n++
	}
	if n > numCPU {
		n = numCPU
	}
	if n < 1 {
		n = 1
	}
	return n
}
