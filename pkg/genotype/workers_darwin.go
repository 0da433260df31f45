//go:build darwin

package genotype

import (
	"syscall"
)

// detectWorkers prefers the performance cores on Apple Silicon
func detectWorkers() int {
	for _, name := range []string{"hw.perflevel0.physicalcpu", "hw.physicalcpu"} {
		// Sysctl returns the raw little-endian integer
		result, err := syscall.Sysctl(name)
		if err != nil || len(result) == 0 {
			continue
		}
		count := int(result[0])
		if len(result) > 1 {
			count |= int(result[1]) << 8
		}
		if count > 0 {
			return count
		}
	}
	return 0
}
