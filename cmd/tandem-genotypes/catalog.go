package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/locus"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <catalog>",
	Short: "Validate a locus catalog and show a summary",
	Long: `Load a locus catalog, report malformed lines and summarise the loci
per reference and per repeat unit length.

Example:
  tandem-genotypes catalog repeats.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		catalog, err := loadCatalog(ctx, args[0], locus.LoadOptions{MinUnit: minUnit, MaxUnit: maxUnit})
		if err != nil {
			return err
		}
		loci := catalog.Loci()

		fmt.Println("===========================================")
		fmt.Println("Locus Catalog")
		fmt.Println("===========================================")
		fmt.Println()
		fmt.Printf("Loci: %d\n", len(loci))
		fmt.Printf("Skipped lines: %d\n", len(catalog.Skipped))
		fmt.Printf("Outside unit range: %d\n", catalog.Dropped)
		fmt.Println()

		spans := lo.Map(loci, func(l locus.Locus, _ int) int { return l.Len() })
		fmt.Println("Span:")
		fmt.Printf("  Min: %d bp\n", lo.Min(spans))
		fmt.Printf("  Max: %d bp\n", lo.Max(spans))
		fmt.Printf("  Total: %d bp\n", lo.Sum(spans))
		fmt.Println()

		fmt.Println("Unit length:")
		byUnit := lo.CountValuesBy(loci, func(l locus.Locus) int { return len(l.Unit) })
		units := lo.Keys(byUnit)
		sort.Ints(units)
		for _, u := range units {
			fmt.Printf("  %d: %d loci\n", u, byUnit[u])
		}
		fmt.Println()

		fmt.Println("References:")
		byRef := lo.CountValuesBy(loci, func(l locus.Locus) string { return l.RefName })
		for _, ref := range catalog.References() {
			fmt.Printf("  %s: %d loci\n", ref, byRef[ref])
		}

		if len(catalog.Skipped) > 0 {
			fmt.Println()
			fmt.Println("Skipped:")
			for _, s := range catalog.Skipped {
				fmt.Printf("  line %d: %v\n", s.Line, s.Err)
			}
		}

		return nil
	},
}

func init() {
	catalogCmd.Flags().IntVar(&minUnit, "min-unit", 0,
		"Skip loci with a shorter repeat unit (0 = no limit)")
	catalogCmd.Flags().IntVar(&maxUnit, "max-unit", 0,
		"Skip loci with a longer repeat unit (0 = no limit)")
}
