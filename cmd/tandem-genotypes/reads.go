package main

import (
	"context"
	"fmt"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/genotype"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/report"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	regionStr   string
	readsOutput string
	countOnly   bool
)

var readsCmd = &cobra.Command{
	Use:   "reads <catalog> <alignments...>",
	Short: "Show the per-read length changes behind each call",
	Long: `Write one line per read and locus with the read's length change,
flank lengths and marginal flag, before any clustering.

The region format is: chr or chr:start-end (e.g., chr4:3074000-3075000).
Only loci inside the region are reported.

Examples:
  tandem-genotypes reads repeats.tsv sample.bam --region chr4:3074000-3075000
  tandem-genotypes reads repeats.tsv sample.bam --region chrX --count`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runReads(ctx, args[0], args[1:])
	},
}

func init() {
	readsCmd.Flags().StringVar(&regionStr, "region", "",
		"Restrict to loci in this region (chr or chr:start-end)")
	readsCmd.Flags().StringVarP(&readsOutput, "output", "o", "-",
		"Output path: file, s3:// URI or - for stdout")
	readsCmd.Flags().BoolVar(&countOnly, "count", false,
		"Only log the number of estimates, don't write them")
	readsCmd.Flags().IntVar(&workers, "workers", 0,
		"Number of parallel workers (0 = auto-detect CPU count)")
	readsCmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing output")
	addInputFlags(readsCmd)
}

func runReads(ctx context.Context, catalogPath string, inputs []string) error {
	config := estimationConfig()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !countOnly {
		if err := checkOutput(ctx, readsOutput); err != nil {
			return err
		}
	}

	catalog, err := loadCatalog(ctx, catalogPath, locus.LoadOptions{MinUnit: minUnit, MaxUnit: maxUnit})
	if err != nil {
		return err
	}

	var idx []int
	if regionStr != "" {
		region, err := locus.ParseRegion(regionStr)
		if err != nil {
			return fmt.Errorf("invalid region: %w", err)
		}
		if idx = catalog.InRegion(region); len(idx) == 0 {
			logrus.WithField("region", regionStr).Warn("no catalog loci in region")
			return nil
		}
	}

	g, err := genotype.New(catalog, config)
	if err != nil {
		return err
	}

	records, _, err := loadAlignments(ctx, inputs, readOptions())
	if err != nil {
		return err
	}

	estimates, stats, err := g.Estimates(records, idx)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"estimates": stats.Estimates,
		"marginal":  stats.Marginal,
		"invalid":   stats.Invalid,
	}).Info("estimated read lengths")

	if countOnly {
		fmt.Printf("Found %d estimates (%d marginal)\n", stats.Estimates, stats.Marginal)
		return nil
	}

	out, err := storage.Create(ctx, readsOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	err = report.WriteEstimatesTSV(out, catalog, estimates)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
