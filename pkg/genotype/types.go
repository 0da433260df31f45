package genotype

import (
	"errors"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
)

// ErrNoAlignments is returned when a run is given no alignment records
var ErrNoAlignments = errors.New("no alignment records")

// LengthEstimate is one read's length change at one locus
type LengthEstimate struct {
	LocusIndex int
	Sample     string
	ReadID     string
	Strand     alignment.Strand
	Change     int  // Read span minus reference span inside the locus window
	Marginal   bool // Alignment ends or is clipped close to a locus boundary
	LeftFlank  int
	RightFlank int
}

// Zygosity of a genotype call
type Zygosity int

const (
	NoData Zygosity = iota
	Homozygous
	Heterozygous
)

func (z Zygosity) String() string {
	switch z {
	case Homozygous:
		return "hom"
	case Heterozygous:
		return "het"
	}
	return "none"
}

// Call is the genotype of one locus in one sample
type Call struct {
	Locus      locus.Locus
	LocusIndex int
	Sample     string

	Zygosity   Zygosity
	Alleles    [2]float64 // Net length changes, ascending; equal when homozygous
	Support    int        // Reads behind the reported alleles
	Spread     float64    // Pooled intra-cluster standard deviation
	Separation float64    // Cluster gap over spread, heterozygous calls only
	Excluded   int        // Reads dropped as outliers
	Marginal   bool       // Built from marginal reads only

	Forward []int // Per-read changes on the forward strand, sorted
	Reverse []int // Per-read changes on the reverse strand, sorted
}

// HasData reports whether the call carries allele estimates
func (c Call) HasData() bool {
	return c.Zygosity != NoData
}

// Lengths returns allele lengths in bases (locus span plus change)
func (c Call) Lengths() [2]float64 {
	span := float64(c.Locus.Len())
	return [2]float64{span + c.Alleles[0], span + c.Alleles[1]}
}

// RunStats summarises one genotyping run
type RunStats struct {
	Samples   int
	Records   int
	Invalid   int
	OffTarget int // Valid records overlapping no locus
	Estimates int
	Marginal  int
	NoData    int // Calls without data across all samples
}
