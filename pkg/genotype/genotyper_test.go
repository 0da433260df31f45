package genotype

import (
	"errors"
	"fmt"
	"testing"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *locus.Catalog {
	t.Helper()
	c, err := locus.NewCatalog([]locus.Locus{
		cagLocus,
		{RefName: "chr2", Start: 500, End: 530, Unit: "GAA", Label: "FXN"},
		{RefName: "chr1", Start: 1000, End: 1024, Unit: "CGG", Label: "FMR1"},
	})
	require.NoError(t, err)
	return c
}

func newTestGenotyper(t *testing.T, workers int) *Genotyper {
	t.Helper()
	cfg := testConfig()
	cfg.Workers = workers
	g, err := New(testCatalog(t), cfg)
	require.NoError(t, err)
	return g
}

func reads(sample string, n int, build func(i int) alignment.Record) []alignment.Record {
	out := make([]alignment.Record, n)
	for i := range out {
		out[i] = build(i)
		out[i].Sample = sample
		if out[i].ReadID == "" {
			out[i].ReadID = fmt.Sprintf("%s-%d", sample, i)
		}
	}
	return out
}

// Six reads with read span 30 over chr1:100-130.
func TestRunHomozygousScenario(t *testing.T) {
	g := newTestGenotyper(t, 2)
	records := reads("s1", 6, func(i int) alignment.Record {
		return rec("", "", 40+i, m(120))
	})

	res, err := g.Run(records, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, res.Samples)
	require.Len(t, res.Calls[0], 3)

	c := res.Calls[0][0]
	assert.Equal(t, "HTT", c.Locus.ID())
	assert.Equal(t, Homozygous, c.Zygosity)
	assert.Equal(t, [2]float64{30, 30}, c.Lengths())
	assert.Equal(t, 6, c.Support)

	copies, ok := Copies(c)
	require.True(t, ok)
	assert.Equal(t, [2]float64{10, 10}, copies)
}

func TestRunHeterozygousScenario(t *testing.T) {
	g := newTestGenotyper(t, 1)
	records := reads("s1", 6, func(i int) alignment.Record {
		if i%2 == 0 {
			return rec("", "", 50, m(60), ins(9), m(40))
		}
		return rec("", "", 50, m(100))
	})

	res, err := g.Run(records, nil)
	require.NoError(t, err)

	c := res.Calls[0][0]
	assert.Equal(t, Heterozygous, c.Zygosity)
	assert.Equal(t, [2]float64{0, 9}, c.Alleles)
	assert.Equal(t, [2]float64{30, 39}, c.Lengths())
	assert.Equal(t, 6, c.Support)
	assert.GreaterOrEqual(t, c.Separation, g.Config().MinSeparation)
}

func TestRunOutlierScenario(t *testing.T) {
	g := newTestGenotyper(t, 3)
	records := reads("s1", 5, func(i int) alignment.Record {
		if i == 4 {
			return rec("", "", 50, m(60), ins(45), m(40))
		}
		return rec("", "", 50, m(60), ins(3), m(40))
	})

	res, err := g.Run(records, nil)
	require.NoError(t, err)

	c := res.Calls[0][0]
	assert.Equal(t, Homozygous, c.Zygosity)
	assert.Equal(t, [2]float64{3, 3}, c.Alleles)
	assert.Equal(t, 4, c.Support)
	assert.Equal(t, 1, c.Excluded)
}

func TestRunNoDataScenario(t *testing.T) {
	g := newTestGenotyper(t, 4)
	records := reads("s1", 3, func(i int) alignment.Record {
		return rec("", "", 50, m(100))
	})

	res, err := g.Run(records, nil)
	require.NoError(t, err)

	calls := res.Calls[0]
	assert.True(t, calls[0].HasData())
	for _, c := range calls[1:] {
		assert.Equal(t, NoData, c.Zygosity)
		assert.Equal(t, 0, c.Support)
		assert.Equal(t, "s1", c.Sample)
	}
	assert.Equal(t, "FXN", calls[1].Locus.ID())
	assert.Equal(t, "FMR1", calls[2].Locus.ID())
	assert.Equal(t, 2, res.Stats.NoData)
}

func TestRunSamplesAndOrdering(t *testing.T) {
	g := newTestGenotyper(t, 4)

	var records []alignment.Record
	records = append(records, reads("child", 3, func(i int) alignment.Record {
		return rec("", "", 950, m(100))
	})...)
	records = append(records, reads("mother", 4, func(i int) alignment.Record {
		return rec("", "", 50, m(60), ins(6), m(40))
	})...)
	fxn := rec("fxn", "", 400, m(200))
	fxn.RefName = "chr2"
	records = append(records, reads("child", 1, func(int) alignment.Record { return fxn })...)

	res, err := g.Run(records, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"child", "mother"}, res.Samples)

	child := res.Calls[0]
	assert.Equal(t, NoData, child[0].Zygosity)
	assert.Equal(t, Homozygous, child[1].Zygosity)
	assert.Equal(t, 1, child[1].Support)
	assert.Equal(t, Homozygous, child[2].Zygosity)
	assert.Equal(t, 3, child[2].Support)

	mother := res.Calls[1]
	assert.Equal(t, [2]float64{6, 6}, mother[0].Alleles)
	assert.Equal(t, "mother", mother[0].Sample)
	assert.Equal(t, NoData, mother[1].Zygosity)

	for s := range res.Calls {
		for i, c := range res.Calls[s] {
			assert.Equal(t, i, c.LocusIndex)
		}
	}
}

func TestRunSkipsInvalidAndOffTarget(t *testing.T) {
	g := newTestGenotyper(t, 2)
	records := []alignment.Record{
		rec("ok", "s1", 50, m(100)),
		rec("bad", "s1", 50, ins(3), m(100)),
		rec("far", "s1", 5000, m(100)),
	}
	other := rec("chr9", "s1", 50, m(100))
	other.RefName = "chr9"
	records = append(records, other)

	res, err := g.Run(records, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Stats.Records)
	assert.Equal(t, 1, res.Stats.Invalid)
	assert.Equal(t, 2, res.Stats.OffTarget)
	assert.Equal(t, 1, res.Stats.Estimates)
	assert.Equal(t, 1, res.Calls[0][0].Support)
}

func TestRunNoAlignments(t *testing.T) {
	g := newTestGenotyper(t, 1)
	_, err := g.Run(nil, nil)
	assert.True(t, errors.Is(err, ErrNoAlignments))
}

func TestRunKeepsSamplesWithoutRecords(t *testing.T) {
	g := newTestGenotyper(t, 2)
	records := reads("a", 3, func(i int) alignment.Record {
		return rec("", "", 50, m(100))
	})

	res, err := g.Run(records, []string{"b", "a"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, res.Samples)
	assert.Equal(t, 2, res.Stats.Samples)

	for _, c := range res.Calls[0] {
		assert.Equal(t, "b", c.Sample)
		assert.Equal(t, NoData, c.Zygosity)
		assert.Equal(t, 0, c.Support)
	}
	assert.Equal(t, Homozygous, res.Calls[1][0].Zygosity)
	assert.Equal(t, 5, res.Stats.NoData)

	res, err = g.Run(nil, []string{"b"})
	require.NoError(t, err)
	require.Len(t, res.Calls, 1)
	assert.Equal(t, 3, res.Stats.NoData)
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	_, err := New(nil, testConfig())
	assert.True(t, errors.Is(err, locus.ErrEmptyCatalog))

	cfg := testConfig()
	cfg.Workers = 0
	_, err = New(testCatalog(t), cfg)
	assert.Error(t, err)
}

func TestRunWorkerCountDoesNotChangeCalls(t *testing.T) {
	var records []alignment.Record
	for s := 0; s < 3; s++ {
		sample := fmt.Sprintf("s%d", s)
		records = append(records, reads(sample, 8, func(i int) alignment.Record {
			if i%2 == 0 {
				return rec("", "", 40+i, m(60+i%3), ins(3*s+1+(i/2)%2), m(60))
			}
			return rec("", "", 900+i, m(200))
		})...)
	}

	one, err := newTestGenotyper(t, 1).Run(records, nil)
	require.NoError(t, err)
	many, err := newTestGenotyper(t, 8).Run(records, nil)
	require.NoError(t, err)

	assert.Equal(t, one.Samples, many.Samples)
	assert.Equal(t, one.Calls, many.Calls)
	assert.Equal(t, one.Stats, many.Stats)
}

func TestEstimatesFiltersLoci(t *testing.T) {
	g := newTestGenotyper(t, 1)
	records := []alignment.Record{
		rec("b", "s1", 50, m(60), ins(2), m(40)),
		rec("a", "s1", 50, m(100)),
		rec("c", "s1", 950, m(100)),
	}

	all, stats, err := g.Estimates(records, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, stats.Estimates)
	assert.Equal(t, "a", all[0].ReadID)
	assert.Equal(t, "b", all[1].ReadID)
	assert.Equal(t, 2, all[1].Change)
	assert.Equal(t, 2, all[2].LocusIndex)

	only, _, err := g.Estimates(records, []int{2})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "c", only[0].ReadID)
}

func TestSweepMatchesAllPairs(t *testing.T) {
	catalog, err := locus.NewCatalog([]locus.Locus{
		{RefName: "chr1", Start: 100, End: 400, Unit: "A"},
		{RefName: "chr1", Start: 120, End: 130, Unit: "AT"},
		{RefName: "chr1", Start: 300, End: 320, Unit: "CAG"},
		{RefName: "chr1", Start: 310, End: 315, Unit: "G"},
		{RefName: "chr1", Start: 900, End: 950, Unit: "GA"},
	})
	require.NoError(t, err)
	cfg := testConfig()

	var records []*alignment.Record
	for i := 0; i < 40; i++ {
		r := rec(fmt.Sprintf("r%d", i), "s", i*25, m(60+(i%7)*50))
		records = append(records, &r)
	}

	idx := []int{0, 1, 2, 3, 4}
	sortLoci(catalog, idx, cfg.Near)
	sortRecords(records)

	got := map[string]bool{}
	sweep(catalog, idx, records, cfg, func(li int, e LengthEstimate) {
		got[fmt.Sprintf("%d/%s", li, e.ReadID)] = true
	})

	want := map[string]bool{}
	for _, r := range records {
		for li := 0; li < catalog.Len(); li++ {
			if _, ok := Estimate(r, catalog.At(li), cfg); ok {
				want[fmt.Sprintf("%d/%s", li, r.ReadID)] = true
			}
		}
	}
	assert.Equal(t, want, got)
	assert.NotEmpty(t, got)
}
