package genotype

import (
	"sort"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
)

// window returns the reference interval examined for a locus
func window(l locus.Locus, near int) (int, int) {
	start := l.Start - near
	if start < 0 {
		start = 0
	}
	return start, l.End + near
}

// Estimate computes the length change of one read at one locus.
// It returns false when the read does not span the locus window or leaves
// less than MinFlank bases of flank on either side.
func Estimate(r *alignment.Record, l locus.Locus, cfg *Config) (LengthEstimate, bool) {
	ws, we := window(l, cfg.Near)

	if r.RefName != l.RefName || !alignment.Covers(r, ws, we) {
		return LengthEstimate{}, false
	}

	left := ws - r.RefStart
	right := r.RefEnd() - we
	if left < cfg.MinFlank || right < cfg.MinFlank {
		return LengthEstimate{}, false
	}

	readStart, ok := alignment.RefToRead(r, ws, alignment.LeftSide)
	if !ok {
		return LengthEstimate{}, false
	}
	readEnd, ok := alignment.RefToRead(r, we, alignment.RightSide)
	if !ok {
		return LengthEstimate{}, false
	}

	// Clipped ends need twice the margin.
	marginal := left < cfg.MarginFlank || right < cfg.MarginFlank ||
		(r.LeadClip > 0 && left < 2*cfg.MarginFlank) ||
		(r.TrailClip > 0 && right < 2*cfg.MarginFlank)

	return LengthEstimate{
		Sample:     r.Sample,
		ReadID:     r.ReadID,
		Strand:     r.Strand,
		Change:     (readEnd - readStart) - (we - ws),
		Marginal:   marginal,
		LeftFlank:  left,
		RightFlank: right,
	}, true
}

// sortEstimates orders estimates by locus, sample, read and change
func sortEstimates(es []LengthEstimate) {
	sort.Slice(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if a.LocusIndex != b.LocusIndex {
			return a.LocusIndex < b.LocusIndex
		}
		if a.Sample != b.Sample {
			return a.Sample < b.Sample
		}
		if a.ReadID != b.ReadID {
			return a.ReadID < b.ReadID
		}
		return a.Change < b.Change
	})
}
