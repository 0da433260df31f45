package locus

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRegion parses a region string like "chr1:1000000-2000000" or "chr1".
// A bare reference name selects the whole reference.
func ParseRegion(regionStr string) (Region, error) {
	parts := strings.Split(regionStr, ":")
	if len(parts) == 1 {
		if parts[0] == "" {
			return Region{}, fmt.Errorf("empty region")
		}
		return Region{Reference: parts[0], Start: 0, End: -1}, nil
	}

	if len(parts) != 2 || parts[0] == "" {
		return Region{}, fmt.Errorf("invalid region format: %s (expected chr:start-end or chr)", regionStr)
	}

	coords := strings.Split(parts[1], "-")
	if len(coords) != 2 {
		return Region{}, fmt.Errorf("invalid coordinates: %s (expected start-end)", parts[1])
	}

	start, err := strconv.Atoi(strings.ReplaceAll(coords[0], ",", ""))
	if err != nil {
		return Region{}, fmt.Errorf("invalid start position: %w", err)
	}
	end, err := strconv.Atoi(strings.ReplaceAll(coords[1], ",", ""))
	if err != nil {
		return Region{}, fmt.Errorf("invalid end position: %w", err)
	}
	if start < 0 || end <= start {
		return Region{}, fmt.Errorf("invalid region bounds: %d-%d", start, end)
	}

	return Region{Reference: parts[0], Start: start, End: end}, nil
}
