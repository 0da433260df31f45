package genotype

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/sirupsen/logrus"
)

// Genotyper calls every catalog locus in every sample found in the records
type Genotyper struct {
	catalog *locus.Catalog
	config  *Config
	lociBy  map[string][]int // Reference name -> sorted catalog indices
}

// Result holds the calls of one run.
// Calls[i] belongs to Samples[i] and is in catalog order.
type Result struct {
	Samples []string
	Calls   [][]Call
	Stats   RunStats
}

// job is the work for one (sample, reference) pair
type job struct {
	sample  int
	ref     string
	records []*alignment.Record
}

// jobResult carries the calls produced by one job
type jobResult struct {
	sample    int
	calls     []Call
	offTarget int
	estimates int
	marginal  int
}

// New creates a Genotyper for the catalog
func New(catalog *locus.Catalog, config *Config) (*Genotyper, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, locus.ErrEmptyCatalog
	}
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lociBy := make(map[string][]int)
	for i := 0; i < catalog.Len(); i++ {
		ref := catalog.At(i).RefName
		lociBy[ref] = append(lociBy[ref], i)
	}
	for ref := range lociBy {
		sortLoci(catalog, lociBy[ref], config.Near)
	}

	return &Genotyper{
		catalog: catalog,
		config:  config,
		lociBy:  lociBy,
	}, nil
}

// Run genotypes all loci for every sample.
// samples lists samples known from the inputs even if none of their records
// are usable; each gets a row per locus. Samples found only in records
// follow in order of first appearance. Invalid records are logged and
// skipped. A run with neither records nor samples fails with ErrNoAlignments.
func (g *Genotyper) Run(records []alignment.Record, samples []string) (*Result, error) {
	if len(records) == 0 && len(samples) == 0 {
		return nil, ErrNoAlignments
	}

	log := g.config.logger()
	res := &Result{}
	res.Stats.Records = len(records)

	valid := g.validRecords(records, &res.Stats)
	seen := lo.Map(valid, func(r *alignment.Record, _ int) string { return r.Sample })
	res.Samples = lo.Uniq(append(append([]string(nil), samples...), seen...))
	res.Stats.Samples = len(res.Samples)

	res.Calls = make([][]Call, len(res.Samples))
	for s, sample := range res.Samples {
		res.Calls[s] = make([]Call, g.catalog.Len())
		for i := range res.Calls[s] {
			res.Calls[s][i] = Call{Locus: g.catalog.At(i), LocusIndex: i, Sample: sample}
		}
	}

	jobs := g.jobs(valid, res.Samples, &res.Stats)

	log.WithFields(logrus.Fields{
		"samples": len(res.Samples),
		"loci":    g.catalog.Len(),
		"records": len(valid),
		"jobs":    len(jobs),
		"workers": g.config.Workers,
	}).Info("genotyping")

	for r := range g.runJobs(jobs) {
		for _, c := range r.calls {
			res.Calls[r.sample][c.LocusIndex] = c
		}
		res.Stats.OffTarget += r.offTarget
		res.Stats.Estimates += r.estimates
		res.Stats.Marginal += r.marginal
	}

	for s := range res.Calls {
		for _, c := range res.Calls[s] {
			if !c.HasData() {
				res.Stats.NoData++
			}
		}
	}

	log.WithFields(logrus.Fields{
		"estimates":  res.Stats.Estimates,
		"marginal":   res.Stats.Marginal,
		"off_target": res.Stats.OffTarget,
		"invalid":    res.Stats.Invalid,
		"no_data":    res.Stats.NoData,
	}).Info("genotyping complete")

	return res, nil
}

// Estimates returns every per-read estimate for the given loci (all loci when
// idx is empty), ordered by catalog index, sample and read.
func (g *Genotyper) Estimates(records []alignment.Record, idx []int) ([]LengthEstimate, RunStats, error) {
	var stats RunStats
	if len(records) == 0 {
		return nil, stats, ErrNoAlignments
	}
	stats.Records = len(records)

	wanted := make(map[int]bool, len(idx))
	for _, i := range idx {
		wanted[i] = true
	}

	valid := g.validRecords(records, &stats)
	byRef := lo.GroupBy(valid, func(r *alignment.Record) string { return r.RefName })

	var out []LengthEstimate
	for _, ref := range g.catalog.References() {
		recs := byRef[ref]
		if len(recs) == 0 {
			continue
		}
		sortRecords(recs)
		sweep(g.catalog, g.lociBy[ref], recs, g.config, func(li int, e LengthEstimate) {
			if len(wanted) > 0 && !wanted[li] {
				return
			}
			stats.Estimates++
			if e.Marginal {
				stats.Marginal++
			}
			out = append(out, e)
		})
	}

	sortEstimates(out)
	return out, stats, nil
}

// validRecords drops records that fail validation
func (g *Genotyper) validRecords(records []alignment.Record, stats *RunStats) []*alignment.Record {
	log := g.config.logger()
	valid := make([]*alignment.Record, 0, len(records))
	for i := range records {
		r := &records[i]
		if err := r.Validate(); err != nil {
			stats.Invalid++
			log.WithField("read", r.ReadID).Warnf("skipping record: %v", err)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

// jobs groups records by sample and reference. Records on references without
// loci are counted as off target and never reach a worker.
func (g *Genotyper) jobs(valid []*alignment.Record, samples []string, stats *RunStats) []job {
	sampleIdx := make(map[string]int, len(samples))
	for i, s := range samples {
		sampleIdx[s] = i
	}

	grouped := make(map[int]map[string][]*alignment.Record)
	for _, r := range valid {
		if _, ok := g.lociBy[r.RefName]; !ok {
			stats.OffTarget++
			continue
		}
		s := sampleIdx[r.Sample]
		if grouped[s] == nil {
			grouped[s] = make(map[string][]*alignment.Record)
		}
		grouped[s][r.RefName] = append(grouped[s][r.RefName], r)
	}

	var out []job
	refs := g.catalog.References()
	for s := range samples {
		for _, ref := range refs {
			if recs := grouped[s][ref]; len(recs) > 0 {
				out = append(out, job{sample: s, ref: ref, records: recs})
			}
		}
	}
	return out
}

// runJobs processes jobs on a pool of workers and streams their results.
// The returned channel is closed once every job has been processed.
func (g *Genotyper) runJobs(jobs []job) <-chan jobResult {
	workers := g.config.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		workers = 1
	}

	jobQueue := make(chan job, workers*2)
	resultQueue := make(chan jobResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobQueue {
				resultQueue <- g.process(j)
			}
		}()
	}

	go func() {
		for _, j := range jobs {
			jobQueue <- j
		}
		close(jobQueue)
		wg.Wait()
		close(resultQueue)
	}()

	return resultQueue
}

// process sweeps one job and aggregates each locus it touched
func (g *Genotyper) process(j job) jobResult {
	sortRecords(j.records)
	loci := g.lociBy[j.ref]

	res := jobResult{sample: j.sample}
	perLocus := make(map[int][]LengthEstimate)

	touched := sweep(g.catalog, loci, j.records, g.config, func(li int, e LengthEstimate) {
		perLocus[li] = append(perLocus[li], e)
		res.estimates++
		if e.Marginal {
			res.marginal++
		}
	})
	for _, t := range touched {
		if !t {
			res.offTarget++
		}
	}

	sample := ""
	if len(j.records) > 0 {
		sample = j.records[0].Sample
	}
	res.calls = make([]Call, 0, len(perLocus))
	for _, li := range loci {
		estimates, ok := perLocus[li]
		if !ok {
			continue
		}
		c := Aggregate(estimates, g.config)
		c.Locus = g.catalog.At(li)
		c.LocusIndex = li
		c.Sample = sample
		res.calls = append(res.calls, c)
	}
	return res
}

// Config returns the configuration the Genotyper runs with
func (g *Genotyper) Config() *Config {
	return g.config
}
