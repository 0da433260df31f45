package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/genotype"
	"github.com/xuri/excelize/v2"
)

const (
	callSheet    = "calls"
	summarySheet = "summary"
)

// WriteXLSX writes the call table as a workbook with a calls sheet and a
// summary sheet. Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, res *genotype.Result, opts Options) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if err := xlsx.SetSheetName("Sheet1", callSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(xlsx, callSheet, Columns(opts), Rows(res, opts)); err != nil {
		return err
	}

	if _, err := xlsx.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	summary := [][]string{
		{"samples", strconv.Itoa(res.Stats.Samples)},
		{"records", strconv.Itoa(res.Stats.Records)},
		{"invalid", strconv.Itoa(res.Stats.Invalid)},
		{"off_target", strconv.Itoa(res.Stats.OffTarget)},
		{"estimates", strconv.Itoa(res.Stats.Estimates)},
		{"marginal", strconv.Itoa(res.Stats.Marginal)},
		{"no_data", strconv.Itoa(res.Stats.NoData)},
	}
	if err := writeSheet(xlsx, summarySheet, []string{"stat", "value"}, summary); err != nil {
		return err
	}

	if _, err := xlsx.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(xlsx *excelize.File, sheet string, title []string, rows [][]string) error {
	if err := xlsx.SetSheetRow(sheet, "A1", &title); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cells := lo.Map(row, func(v string, _ int) any { return cellValue(v) })
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xlsx.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// cellValue stores numeric text as a number
func cellValue(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
