package locus

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyCatalog is returned when a catalog yields no valid loci
var ErrEmptyCatalog = errors.New("no valid loci in catalog")

// Locus is a reference interval known to contain a tandem repeat.
// Coordinates are 0-based and half-open.
type Locus struct {
	RefName string
	Start   int
	End     int
	Unit    string // Repeat unit, informational only
	Label   string // Optional human-readable name
}

// ID returns the label, or ref:start-end when the locus has none
func (l Locus) ID() string {
	if l.Label != "" {
		return l.Label
	}
	return fmt.Sprintf("%s:%d-%d", l.RefName, l.Start, l.End)
}

// Len returns the reference span of the locus
func (l Locus) Len() int {
	return l.End - l.Start
}

// Validate checks the locus invariants
func (l Locus) Validate() error {
	if l.RefName == "" {
		return fmt.Errorf("missing reference name")
	}
	if l.Start < 0 {
		return fmt.Errorf("negative start %d", l.Start)
	}
	if l.Start >= l.End {
		return fmt.Errorf("start %d not before end %d", l.Start, l.End)
	}
	if len(l.Unit) < 1 {
		return fmt.Errorf("empty repeat unit")
	}
	return nil
}

// Overlaps reports whether [start, end) on ref intersects the locus
func (l Locus) Overlaps(ref string, start, end int) bool {
	return l.RefName == ref && start < l.End && end > l.Start
}

// Region represents a genomic region query
type Region struct {
	Reference string
	Start     int
	End       int // -1 means to the end of the reference
}

// Contains reports whether the locus overlaps the region
func (r Region) Contains(l Locus) bool {
	end := r.End
	if end == -1 {
		end = math.MaxInt
	}
	return l.Overlaps(r.Reference, r.Start, end)
}
