package genotype

import (
	"math/rand"
	"testing"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/stretchr/testify/assert"
)

func estimates(changes ...int) []LengthEstimate {
	out := make([]LengthEstimate, len(changes))
	for i, c := range changes {
		out[i] = LengthEstimate{ReadID: string(rune('a' + i)), Change: c, Strand: alignment.Forward}
	}
	return out
}

func TestAggregateNoData(t *testing.T) {
	call := Aggregate(nil, testConfig())
	assert.Equal(t, NoData, call.Zygosity)
	assert.Equal(t, 0, call.Support)
	assert.False(t, call.HasData())
}

func TestAggregateHomozygous(t *testing.T) {
	call := Aggregate(estimates(0, 0, 0, 0, 0, 0), testConfig())
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.Equal(t, [2]float64{0, 0}, call.Alleles)
	assert.Equal(t, 6, call.Support)
	assert.Equal(t, 0.0, call.Spread)
	assert.Equal(t, 0, call.Excluded)
}

func TestAggregateWithinSpread(t *testing.T) {
	call := Aggregate(estimates(0, 1, 2), testConfig())
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.InDelta(t, 1.0, call.Alleles[0], 1e-9)
	assert.Equal(t, 3, call.Support)
}

func TestAggregateHeterozygous(t *testing.T) {
	call := Aggregate(estimates(9, 0, 9, 0, 9, 0), testConfig())
	assert.Equal(t, Heterozygous, call.Zygosity)
	assert.Equal(t, [2]float64{0, 9}, call.Alleles)
	assert.Equal(t, 6, call.Support)
	assert.Equal(t, 0.0, call.Spread)
	assert.InDelta(t, 9.0, call.Separation, 1e-9)
}

func TestAggregateOutlierExcluded(t *testing.T) {
	call := Aggregate(estimates(3, 3, 45, 3, 3), testConfig())
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.Equal(t, [2]float64{3, 3}, call.Alleles)
	assert.Equal(t, 4, call.Support)
	assert.Equal(t, 1, call.Excluded)
}

func TestAggregateOutlierThenSplit(t *testing.T) {
	call := Aggregate(estimates(0, 0, 0, 9, 9, 9, 45), testConfig())
	assert.Equal(t, Heterozygous, call.Zygosity)
	assert.Equal(t, [2]float64{0, 9}, call.Alleles)
	assert.Equal(t, 6, call.Support)
	assert.Equal(t, 1, call.Excluded)
}

func TestAggregateUniformNoiseStaysSingle(t *testing.T) {
	call := Aggregate(estimates(0, 1, 2, 3, 4, 5), testConfig())
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.InDelta(t, 2.5, call.Alleles[0], 1e-9)
	assert.Equal(t, 6, call.Support)
	assert.Greater(t, call.Spread, 0.0)
}

func TestAggregateNoisyExpansionKept(t *testing.T) {
	call := Aggregate(estimates(950, 980, 1000, 1040), testConfig())
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.Equal(t, 0, call.Excluded)
	assert.InDelta(t, 992.5, call.Alleles[0], 1e-9)
}

func TestAggregateSplitNeedsSupport(t *testing.T) {
	cfg := testConfig()
	cfg.MinClusterSupport = 3
	call := Aggregate(estimates(0, 0, 0, 20, 20), cfg)
	assert.Equal(t, Homozygous, call.Zygosity)

	cfg.MinClusterSupport = 2
	call = Aggregate(estimates(0, 0, 0, 20, 20), cfg)
	assert.Equal(t, Heterozygous, call.Zygosity)
	assert.Equal(t, [2]float64{0, 20}, call.Alleles)
}

func TestAggregateMarginalFallback(t *testing.T) {
	cfg := testConfig()

	onlyMarginal := estimates(6, 6, 6)
	for i := range onlyMarginal {
		onlyMarginal[i].Marginal = true
	}
	call := Aggregate(onlyMarginal, cfg)
	assert.True(t, call.Marginal)
	assert.Equal(t, Homozygous, call.Zygosity)
	assert.Equal(t, [2]float64{6, 6}, call.Alleles)
	assert.Equal(t, 3, call.Support)

	mixed := append(estimates(1, 1), onlyMarginal...)
	call = Aggregate(mixed, cfg)
	assert.False(t, call.Marginal)
	assert.Equal(t, [2]float64{1, 1}, call.Alleles)
	assert.Equal(t, 2, call.Support)
}

func TestAggregateStrandLists(t *testing.T) {
	es := estimates(5, -2, 7, 1)
	es[1].Strand = alignment.Reverse
	es[2].Strand = alignment.Reverse

	call := Aggregate(es, testConfig())
	assert.Equal(t, []int{1, 5}, call.Forward)
	assert.Equal(t, []int{-2, 7}, call.Reverse)
}

func TestAggregateOrderIndependent(t *testing.T) {
	cfg := testConfig()
	base := estimates(0, 0, 1, 9, 10, 9, 9, 45, -1, 0, 30, 31)
	want := Aggregate(base, cfg)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := make([]LengthEstimate, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled, cfg))
	}
}
