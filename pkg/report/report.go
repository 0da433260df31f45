package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/genotype"
)

// Missing marks a value that is absent for a no-data call
const Missing = "."

// Options selects optional output columns
type Options struct {
	Copies bool // Append copy-number columns
}

var callColumns = []string{
	"locus", "ref", "start", "end", "unit", "sample",
	"allele1", "allele2", "length1", "length2",
	"support", "spread", "separation", "excluded", "marginal",
	"fwd_changes", "rev_changes",
}

// Columns returns the call table header in output order
func Columns(opts Options) []string {
	cols := append([]string(nil), callColumns...)
	if opts.Copies {
		cols = append(cols, "copies1", "copies2")
	}
	return cols
}

// Row renders one call in Columns order
func Row(c genotype.Call, opts Options) []string {
	l := c.Locus
	row := []string{
		l.ID(), l.RefName, strconv.Itoa(l.Start), strconv.Itoa(l.End), orMissing(l.Unit), c.Sample,
	}

	if !c.HasData() {
		row = append(row,
			Missing, Missing, Missing, Missing,
			"0", Missing, Missing, "0", "no",
			Missing, Missing,
		)
		if opts.Copies {
			row = append(row, Missing, Missing)
		}
		return row
	}

	lengths := c.Lengths()
	separation := Missing
	if c.Zygosity == genotype.Heterozygous {
		separation = formatFloat(c.Separation)
	}
	row = append(row,
		formatFloat(c.Alleles[0]), formatFloat(c.Alleles[1]),
		formatFloat(lengths[0]), formatFloat(lengths[1]),
		strconv.Itoa(c.Support), formatFloat(c.Spread), separation,
		strconv.Itoa(c.Excluded), yesNo(c.Marginal),
		joinInts(c.Forward), joinInts(c.Reverse),
	)
	if opts.Copies {
		if copies, ok := genotype.Copies(c); ok {
			row = append(row, formatFloat(copies[0]), formatFloat(copies[1]))
		} else {
			row = append(row, Missing, Missing)
		}
	}
	return row
}

// Rows renders every call of a result, sample by sample in catalog order
func Rows(res *genotype.Result, opts Options) [][]string {
	var rows [][]string
	for _, calls := range res.Calls {
		for _, c := range calls {
			rows = append(rows, Row(c, opts))
		}
	}
	return rows
}

// WriteTSV writes the call table as tab-separated text with a '#' header line
func WriteTSV(w io.Writer, res *genotype.Result, opts Options) error {
	return writeTSV(w, Columns(opts), Rows(res, opts))
}

// IsXLSX reports whether an output path asks for a spreadsheet
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func writeTSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "#%s\n", strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(bw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// formatFloat prints at most two decimals and drops trailing zeros.
// Rounding only affects display; calls keep full precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func joinInts(vs []int) string {
	if len(vs) == 0 {
		return Missing
	}
	return strings.Join(lo.Map(vs, func(v int, _ int) string { return strconv.Itoa(v) }), ",")
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
