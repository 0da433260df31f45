package genotype

import (
	"sort"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
)

// sortLoci orders catalog indices by window start, then end, then index
func sortLoci(catalog *locus.Catalog, idx []int, near int) {
	sort.SliceStable(idx, func(i, j int) bool {
		si, ei := window(catalog.At(idx[i]), near)
		sj, ej := window(catalog.At(idx[j]), near)
		if si != sj {
			return si < sj
		}
		if ei != ej {
			return ei < ej
		}
		return idx[i] < idx[j]
	})
}

// sortRecords orders records by reference start, then end, then read ID
func sortRecords(records []*alignment.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.RefStart != b.RefStart {
			return a.RefStart < b.RefStart
		}
		if a.RefEnd() != b.RefEnd() {
			return a.RefEnd() < b.RefEnd()
		}
		return a.ReadID < b.ReadID
	})
}

// sweep pairs records with the loci they overlap on a single reference.
//
// loci must be sorted with sortLoci and records with sortRecords. Records
// enter the active set once they start before a locus window ends and leave
// it once they end at or before a window start, so each record is compared
// only with loci near it. visit is called for every estimate produced. The
// returned slice marks records that overlapped at least one locus window.
func sweep(
	catalog *locus.Catalog,
	loci []int,
	records []*alignment.Record,
	cfg *Config,
	visit func(locusIndex int, e LengthEstimate),
) []bool {
	touched := make([]bool, len(records))
	active := make([]int, 0, 64)
	next := 0

	for _, li := range loci {
		l := catalog.At(li)
		ws, we := window(l, cfg.Near)

		for next < len(records) && records[next].RefStart < we {
			active = append(active, next)
			next++
		}

		kept := active[:0]
		for _, ri := range active {
			if records[ri].RefEnd() > ws {
				kept = append(kept, ri)
			}
		}
		active = kept

		for _, ri := range active {
			r := records[ri]
			if !alignment.Overlaps(r, l.RefName, ws, we) {
				continue
			}
			touched[ri] = true
			if e, ok := Estimate(r, l, cfg); ok {
				e.LocusIndex = li
				visit(li, e)
			}
		}
	}

	return touched
}
