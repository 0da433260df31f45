package main

import (
	"context"
	"fmt"
	"os"

	"github.com/scttfrdmn/tandem-genotypes-go/pkg/bam"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/genotype"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/report"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	outputPath    string
	sampleName    string
	minMapQ       int
	keepDups      bool
	minUnit       int
	maxUnit       int
	showCopies    bool
	showConfig    bool
	workers       int
	minFlank      int
	marginFlank   int
	near          int
	homSpread     float64
	minSupport    int
	minSeparation float64
	outlierDist   float64
	outlierMADs   float64
	force         bool
)

var callCmd = &cobra.Command{
	Use:   "call <catalog> <alignments...>",
	Short: "Genotype every catalog locus in every sample",
	Long: `Genotype tandem repeat loci from SAM or BAM alignments.

The catalog lists one locus per line: ref start end unit [label], with
0-based half-open coordinates. Alignments may be local files, s3:// URIs
or "-" for stdin, optionally zstd or gzip compressed.

Each sample is taken from the read-group SM tag, then --sample, then the
input file name. One row is written per sample and locus, in catalog order.
Loci without spanning reads are reported with "." values.

Output:
  TSV by default, written to stdout or -o. Paths ending in .xlsx produce
  a workbook; .zst or .gz outputs are compressed; s3:// outputs are uploaded.

Examples:
  # Genotype one sample
  tandem-genotypes call repeats.tsv sample.bam -o calls.tsv

  # Several samples, copy numbers, spreadsheet output
  tandem-genotypes call repeats.tsv a.bam b.bam --copies -o calls.xlsx

  # Stream from an aligner
  minimap2 -a ref.fa reads.fq | tandem-genotypes call repeats.tsv - --sample NA12878

  # Show effective configuration
  tandem-genotypes call repeats.tsv sample.bam --show-config`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := genotypeConfig()
		if err != nil {
			return err
		}
		if showConfig {
			config.ShowConfig(os.Stdout)
			return nil
		}
		return runCall(cmd.Context(), args[0], args[1:], config)
	},
}

func init() {
	callCmd.Flags().StringVarP(&outputPath, "output", "o", "-",
		"Output path: file, s3:// URI or - for stdout (.xlsx for a workbook)")
	addInputFlags(callCmd)
	callCmd.Flags().BoolVar(&showCopies, "copies", false,
		"Add repeat copy-number columns (allele length / unit length)")
	callCmd.Flags().BoolVar(&showConfig, "show-config", false,
		"Show effective configuration and exit")
	callCmd.Flags().IntVar(&workers, "workers", 0,
		"Number of parallel workers (0 = auto-detect CPU count)")
	callCmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing output")

	defaults := genotype.NewConfig()
	callCmd.Flags().Float64Var(&homSpread, "hom-spread", defaults.HomozygousSpread,
		"Changes spanning at most this many bases form a single allele")
	callCmd.Flags().IntVar(&minSupport, "min-support", defaults.MinClusterSupport,
		"Reads required in each allele of a heterozygous call")
	callCmd.Flags().Float64Var(&minSeparation, "min-separation", defaults.MinSeparation,
		"Minimum gap between alleles, in units of their pooled spread")
	callCmd.Flags().Float64Var(&outlierDist, "outlier-distance", defaults.OutlierDistance,
		"Extreme changes further than this from their neighbour may be dropped")
	callCmd.Flags().Float64Var(&outlierMADs, "outlier-mads", defaults.OutlierMADs,
		"...unless within this many median absolute deviations")
}

// addInputFlags registers the flags shared by commands that read alignments
func addInputFlags(cmd *cobra.Command) {
	defaults := genotype.NewConfig()
	cmd.Flags().StringVar(&sampleName, "sample", "",
		"Sample name for reads without a read-group SM tag")
	cmd.Flags().IntVar(&minMapQ, "min-mapq", 0,
		"Skip alignments below this mapping quality")
	cmd.Flags().BoolVar(&keepDups, "keep-dups", false,
		"Keep alignments flagged as duplicates")
	cmd.Flags().IntVar(&minUnit, "min-unit", 0,
		"Skip catalog loci with a shorter repeat unit (0 = no limit)")
	cmd.Flags().IntVar(&maxUnit, "max-unit", 0,
		"Skip catalog loci with a longer repeat unit (0 = no limit)")
	cmd.Flags().IntVar(&minFlank, "min-flank", defaults.MinFlank,
		"Ignore reads with less aligned flank than this on either side")
	cmd.Flags().IntVar(&marginFlank, "margin", defaults.MarginFlank,
		"Reads with less flank than this are marginal (used only when nothing else spans)")
	cmd.Flags().IntVar(&near, "near", defaults.Near,
		"Widen each locus by this many bases on both sides")
}

// estimationConfig applies the input flags to a default configuration
func estimationConfig() *genotype.Config {
	config := genotype.NewConfig()
	config.MinFlank = minFlank
	config.MarginFlank = marginFlank
	config.Near = near
	if workers > 0 {
		config.Workers = workers
	}
	config.Logger = logrus.StandardLogger()
	return config
}

func genotypeConfig() (*genotype.Config, error) {
	config := estimationConfig()
	config.HomozygousSpread = homSpread
	config.MinClusterSupport = minSupport
	config.MinSeparation = minSeparation
	config.OutlierDistance = outlierDist
	config.OutlierMADs = outlierMADs

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func readOptions() bam.ReadOptions {
	return bam.ReadOptions{
		Sample:   sampleName,
		MinMapQ:  minMapQ,
		KeepDups: keepDups,
		Logger:   logrus.StandardLogger(),
	}
}

func runCall(ctx context.Context, catalogPath string, inputs []string, config *genotype.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := checkOutput(ctx, outputPath); err != nil {
		return err
	}

	catalog, err := loadCatalog(ctx, catalogPath, locus.LoadOptions{MinUnit: minUnit, MaxUnit: maxUnit})
	if err != nil {
		return err
	}

	g, err := genotype.New(catalog, config)
	if err != nil {
		return err
	}

	records, stats, err := loadAlignments(ctx, inputs, readOptions())
	if err != nil {
		return err
	}
	if stats.Total == 0 {
		return fmt.Errorf("%v: %w", inputs, genotype.ErrNoAlignments)
	}

	res, err := g.Run(records, stats.Samples)
	if err != nil {
		return fmt.Errorf("genotyping failed: %w", err)
	}

	out, err := storage.Create(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	opts := report.Options{Copies: showCopies}
	if report.IsXLSX(outputPath) {
		err = report.WriteXLSX(out, res, opts)
	} else {
		err = report.WriteTSV(out, res, opts)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"output":  outputPath,
		"samples": len(res.Samples),
		"rows":    len(res.Samples) * catalog.Len(),
	}).Info("wrote calls")

	return nil
}
