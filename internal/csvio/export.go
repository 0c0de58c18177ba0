// Package csvio converts transactions to and from spreadsheet formats.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pennie/internal/core"
)

// Header is the column order of exported files.
var Header = []string{"date", "merchant", "amount", "category", "account"}

func record(tx core.Transaction) []string {
	return []string{tx.Date, tx.Merchant, core.FormatAmount(tx.Amount), string(tx.Category), tx.Account}
}

// Export writes txs as CSV. Fields containing commas, quotes or newlines are
// quoted with inner quotes doubled.
func Export(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(record(tx)); err != nil {
			return fmt.Errorf("write transaction %d: %w", tx.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SheetName is the worksheet written by ExportXLSX.
const SheetName = "Transactions"

// ExportXLSX writes txs as a single-sheet workbook with the Export columns.
// Amounts are numeric cells.
func ExportXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{tx.Date, tx.Merchant, tx.Amount.Round(2).InexactFloat64(), string(tx.Category), tx.Account}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write transaction %d: %w", tx.ID, err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 30, "C": 12, "D": 20, "E": 20}
	for col, width := range widths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
