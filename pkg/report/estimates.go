package report

import (
	"io"
	"strconv"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/genotype"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
)

// EstimateColumns is the header of the per-read table
var EstimateColumns = []string{
	"locus", "ref", "start", "end", "sample", "read", "strand",
	"change", "length", "left_flank", "right_flank", "marginal",
}

// WriteEstimatesTSV writes one line per read and locus
func WriteEstimatesTSV(w io.Writer, catalog *locus.Catalog, estimates []genotype.LengthEstimate) error {
	rows := lo.Map(estimates, func(e genotype.LengthEstimate, _ int) []string {
		l := catalog.At(e.LocusIndex)
		strand := "+"
		if e.Strand == alignment.Reverse {
			strand = "-"
		}
		return []string{
			l.ID(), l.RefName, strconv.Itoa(l.Start), strconv.Itoa(l.End),
			e.Sample, e.ReadID, strand,
			strconv.Itoa(e.Change), strconv.Itoa(l.Len() + e.Change),
			strconv.Itoa(e.LeftFlank), strconv.Itoa(e.RightFlank), yesNo(e.Marginal),
		}
	})
	return writeTSV(w, EstimateColumns, rows)
}
