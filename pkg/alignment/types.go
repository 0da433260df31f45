package alignment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord marks a record whose blocks do not describe a usable alignment
var ErrInvalidRecord = errors.New("invalid alignment record")

// BlockKind is the type of an alignment block
type BlockKind uint8

const (
	Match     BlockKind = iota // Consumes read and reference
	Insertion                  // Consumes read only
	Deletion                   // Consumes reference only
)

func (k BlockKind) String() string {
	switch k {
	case Match:
		return "M"
	case Insertion:
		return "I"
	case Deletion:
		return "D"
	}
	return "?"
}

// ConsumesRef reports whether the block advances the reference cursor
func (k BlockKind) ConsumesRef() bool {
	return k == Match || k == Deletion
}

// ConsumesRead reports whether the block advances the read cursor
func (k BlockKind) ConsumesRead() bool {
	return k == Match || k == Insertion
}

// Block is one run of a single kind in an alignment
type Block struct {
	Kind   BlockKind
	Length int
}

// Strand of the read relative to the reference
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Record is one read-to-reference alignment
type Record struct {
	ReadID    string
	Sample    string
	RefName   string
	RefStart  int     // Reference offset of the first aligned base
	ReadStart int     // Read offset of the first aligned base
	Strand    Strand
	Blocks    []Block
	LeadClip  int     // Read bases clipped before the alignment
	TrailClip int     // Read bases clipped after the alignment
	MapQ      uint8
}

// RefSpan returns the reference length consumed by the blocks
func (r *Record) RefSpan() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Kind.ConsumesRef() {
			n += b.Length
		}
	}
	return n
}

// ReadSpan returns the read length consumed by the blocks
func (r *Record) ReadSpan() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Kind.ConsumesRead() {
			n += b.Length
		}
	}
	return n
}

// RefEnd returns the exclusive reference end of the alignment
func (r *Record) RefEnd() int {
	return r.RefStart + r.RefSpan()
}

// ReadEnd returns the exclusive read end of the alignment
func (r *Record) ReadEnd() int {
	return r.ReadStart + r.ReadSpan()
}

// Clipped reports whether either end of the read is clipped
func (r *Record) Clipped() bool {
	return r.LeadClip > 0 || r.TrailClip > 0
}

// Validate checks that the record describes a mappable alignment
func (r *Record) Validate() error {
	if r.RefName == "" {
		return fmt.Errorf("%w: %s: missing reference name", ErrInvalidRecord, r.ReadID)
	}
	if r.RefStart < 0 || r.ReadStart < 0 {
		return fmt.Errorf("%w: %s: negative offset", ErrInvalidRecord, r.ReadID)
	}
	if len(r.Blocks) == 0 {
		return fmt.Errorf("%w: %s: no blocks", ErrInvalidRecord, r.ReadID)
	}
	for i, b := range r.Blocks {
		if b.Length <= 0 {
			return fmt.Errorf("%w: %s: block %d has length %d", ErrInvalidRecord, r.ReadID, i, b.Length)
		}
		if b.Kind > Deletion {
			return fmt.Errorf("%w: %s: block %d has unknown kind", ErrInvalidRecord, r.ReadID, i)
		}
	}
	if r.Blocks[0].Kind != Match || r.Blocks[len(r.Blocks)-1].Kind != Match {
		return fmt.Errorf("%w: %s: alignment must start and end with a match", ErrInvalidRecord, r.ReadID)
	}
	return nil
}

// CIGAR renders the blocks in CIGAR notation, with clips as soft clips
func (r *Record) CIGAR() string {
	var sb strings.Builder
	if r.LeadClip > 0 {
		fmt.Fprintf(&sb, "%dS", r.LeadClip)
	}
	for _, b := range r.Blocks {
		fmt.Fprintf(&sb, "%d%s", b.Length, b.Kind)
	}
	if r.TrailClip > 0 {
		fmt.Fprintf(&sb, "%dS", r.TrailClip)
	}
	return sb.String()
}

// Normalize merges adjacent blocks of the same kind
func Normalize(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Length == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Kind == b.Kind {
			out[n-1].Length += b.Length
			continue
		}
		out = append(out, b)
	}
	return out
}
