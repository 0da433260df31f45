package genotype

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"gonum.org/v1/gonum/stat"
)

// Aggregate turns the estimates for one locus in one sample into a call.
//
// Full-coverage estimates are used unless there are none, in which case the
// marginal ones are. Values within HomozygousSpread of each other form one
// allele. Otherwise the best-separated two-cluster split is tried; if no split
// has enough support and separation, isolated extreme values are dropped one
// at a time as noise and the procedure repeats. The result depends only on
// the multiset of changes, never on input order.
//
// The returned call has no locus or sample set.
func Aggregate(estimates []LengthEstimate, cfg *Config) Call {
	full := lo.Reject(estimates, func(e LengthEstimate, _ int) bool { return e.Marginal })

	var call Call
	used := full
	if len(used) == 0 {
		used = estimates
		call.Marginal = len(used) > 0
	}
	if len(used) == 0 {
		return call
	}

	for _, e := range used {
		if e.Strand == alignment.Reverse {
			call.Reverse = append(call.Reverse, e.Change)
		} else {
			call.Forward = append(call.Forward, e.Change)
		}
	}
	sort.Ints(call.Forward)
	sort.Ints(call.Reverse)

	values := lo.Map(used, func(e LengthEstimate, _ int) float64 { return float64(e.Change) })
	sort.Float64s(values)

	for {
		n := len(values)
		if values[n-1]-values[0] <= cfg.HomozygousSpread {
			break
		}
		if left, right, sep, ok := split(values, cfg); ok {
			meanL, varL := stat.PopMeanVariance(left, nil)
			meanR, varR := stat.PopMeanVariance(right, nil)
			call.Zygosity = Heterozygous
			call.Alleles = [2]float64{meanL, meanR}
			call.Support = n
			call.Spread = pooledStdDev(len(left), varL, len(right), varR)
			call.Separation = sep
			return call
		}
		i, ok := outlier(values, cfg)
		if !ok {
			break
		}
		values = append(values[:i:i], values[i+1:]...)
		call.Excluded++
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	call.Zygosity = Homozygous
	call.Alleles = [2]float64{mean, mean}
	call.Support = len(values)
	call.Spread = std
	return call
}

// split finds the two-cluster split of sorted values with the largest gap
// relative to pooled spread, subject to MinClusterSupport. Ties go to the
// leftmost split.
func split(values []float64, cfg *Config) (left, right []float64, sep float64, ok bool) {
	n := len(values)
	minSupport := cfg.MinClusterSupport
	best := -1.0
	bestAt := -1

	for i := minSupport; i <= n-minSupport; i++ {
		gap := values[i] - values[i-1]
		if gap <= 0 {
			continue
		}
		_, varL := stat.PopMeanVariance(values[:i], nil)
		_, varR := stat.PopMeanVariance(values[i:], nil)
		score := gap / math.Max(pooledStdDev(i, varL, n-i, varR), 1)
		if score > best {
			best = score
			bestAt = i
		}
	}

	if bestAt < 0 || best < cfg.MinSeparation {
		return nil, nil, 0, false
	}

	left, right = values[:bestAt], values[bestAt:]
	if stat.Mean(right, nil)-stat.Mean(left, nil) <= cfg.HomozygousSpread {
		return nil, nil, 0, false
	}
	return left, right, best, true
}

// outlier returns the index of an extreme value isolated from its neighbour
// by more than max(OutlierDistance, OutlierMADs*MAD). The extreme further
// from the median is checked first.
func outlier(values []float64, cfg *Config) (int, bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}

	median := stat.Quantile(0.5, stat.Empirical, values, nil)
	deviations := make([]float64, n)
	for i, v := range values {
		deviations[i] = math.Abs(v - median)
	}
	sort.Float64s(deviations)
	mad := stat.Quantile(0.5, stat.Empirical, deviations, nil)
	limit := math.Max(cfg.OutlierDistance, cfg.OutlierMADs*mad)

	lowGap := values[1] - values[0]
	highGap := values[n-1] - values[n-2]
	candidates := []int{n - 1, 0}
	if median-values[0] > values[n-1]-median {
		candidates = []int{0, n - 1}
	}

	for _, i := range candidates {
		gap := highGap
		if i == 0 {
			gap = lowGap
		}
		if gap > limit {
			return i, true
		}
	}
	return 0, false
}

func pooledStdDev(nl int, varL float64, nr int, varR float64) float64 {
	total := nl + nr
	if total == 0 {
		return 0
	}
	return math.Sqrt((float64(nl)*varL + float64(nr)*varR) / float64(total))
}
