package bam

import (
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
)

// ConvertRecord converts a sam.Record to an alignment.Record.
// Clips are only allowed at either end of the CIGAR; padding is ignored and
// skipped reference (N) is treated as a deletion.
func ConvertRecord(record *sam.Record, sample string) (alignment.Record, error) {
	read := alignment.Record{
		ReadID:   record.Name,
		Sample:   sample,
		RefStart: record.Pos,
		Strand:   alignment.Forward,
		MapQ:     record.MapQ,
	}

	if record.Ref != nil {
		read.RefName = record.Ref.Name()
	}
	if record.Flags&sam.Reverse != 0 {
		read.Strand = alignment.Reverse
	}

	blocks := make([]alignment.Block, 0, len(record.Cigar))
	trailing := false
	for _, op := range record.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if len(blocks) == 0 {
				read.LeadClip += n
			} else {
				read.TrailClip += n
				trailing = true
			}
			continue
		case sam.CigarPadded:
			continue
		}

		if trailing {
			return read, fmt.Errorf("%w: %s: clip inside CIGAR %s", alignment.ErrInvalidRecord, record.Name, record.Cigar)
		}

		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			blocks = append(blocks, alignment.Block{Kind: alignment.Match, Length: n})
		case sam.CigarInsertion:
			blocks = append(blocks, alignment.Block{Kind: alignment.Insertion, Length: n})
		case sam.CigarDeletion, sam.CigarSkipped:
			blocks = append(blocks, alignment.Block{Kind: alignment.Deletion, Length: n})
		default:
			return read, fmt.Errorf("%w: %s: unsupported CIGAR operation %v", alignment.ErrInvalidRecord, record.Name, op.Type())
		}
	}

	read.Blocks = alignment.Normalize(blocks)
	read.ReadStart = read.LeadClip

	if err := read.Validate(); err != nil {
		return read, err
	}
	return read, nil
}

// readGroupSamples maps read-group IDs to their SM values
func readGroupSamples(header *sam.Header) map[string]string {
	samples := make(map[string]string)
	if header == nil {
		return samples
	}
	smTag := sam.NewTag("SM")
	for _, rg := range header.RGs() {
		if sm := rg.Get(smTag); sm != "" {
			samples[rg.Name()] = sm
		}
	}
	return samples
}

// headerSamples lists the distinct SM values of the read groups in header order
func headerSamples(header *sam.Header) []string {
	if header == nil {
		return nil
	}
	smTag := sam.NewTag("SM")
	var out []string
	for _, rg := range header.RGs() {
		if sm := rg.Get(smTag); sm != "" {
			out = append(out, sm)
		}
	}
	return lo.Uniq(out)
}

// recordSample resolves the sample for a record from its RG tag
func recordSample(record *sam.Record, samples map[string]string, fallback string) string {
	if len(samples) > 0 {
		if aux, ok := record.Tag([]byte("RG")); ok {
			if id, ok := aux.Value().(string); ok {
				if sm, ok := samples[id]; ok {
					return sm
				}
			}
		}
	}
	return fallback
}
