package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/bam"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/storage"
	"github.com/sirupsen/logrus"
)

// loadCatalog reads a catalog from a local path, s3:// URI or "-".
// Skipped lines are logged as warnings.
func loadCatalog(ctx context.Context, path string, opts locus.LoadOptions) (*locus.Catalog, error) {
	r, err := storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer r.Close()

	catalog, err := locus.Load(r, opts)
	if catalog != nil {
		for _, skipped := range catalog.Skipped {
			logrus.WithField("catalog", path).Warn(skipped.Error())
		}
	}
	if err != nil {
		if errors.Is(err, locus.ErrEmptyCatalog) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"catalog": path,
		"loci":    catalog.Len(),
		"skipped": len(catalog.Skipped),
		"dropped": catalog.Dropped,
	}).Info("loaded catalog")

	return catalog, nil
}

// ErrOutputExists is returned when the output is already present and
// --force was not given
var ErrOutputExists = errors.New("output already exists (use --force to overwrite)")

// checkOutput refuses to replace an existing output unless forced.
// Stdout never counts as existing output.
func checkOutput(ctx context.Context, path string) error {
	if force || path == storage.Stdio || path == "" {
		return nil
	}
	ok, err := storage.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check output %s: %w", path, err)
	}
	if ok {
		return fmt.Errorf("%s: %w", path, ErrOutputExists)
	}
	return nil
}

// loadAlignments reads every input in order and concatenates the records.
// Inputs that fall back to the same file-name sample are merged into it
// with a warning.
func loadAlignments(ctx context.Context, paths []string, opts bam.ReadOptions) ([]alignment.Record, bam.ReadStats, error) {
	var (
		all       []alignment.Record
		total     bam.ReadStats
		fallbacks = make(map[string]string) // fallback sample -> first input
	)
	for _, path := range paths {
		r, err := storage.Open(ctx, path)
		if err != nil {
			return nil, total, fmt.Errorf("failed to open alignments: %w", err)
		}
		records, stats, err := bam.ReadAlignments(r, path, opts)
		r.Close()
		if err != nil {
			return nil, total, err
		}
		if stats.Fallback != "" && opts.Sample == "" {
			if first, ok := fallbacks[stats.Fallback]; ok && first != path {
				logrus.WithFields(logrus.Fields{
					"sample": stats.Fallback,
					"input":  path,
					"first":  first,
				}).Warn("inputs share a fallback sample name; reads are merged (set read-group SM tags or --sample)")
			} else if !ok {
				fallbacks[stats.Fallback] = path
			}
		}
		all = append(all, records...)
		total.Add(stats)
	}
	return all, total, nil
}
