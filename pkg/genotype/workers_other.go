//go:build !darwin && !linux

package genotype

func detectWorkers() int {
	return 0
}
