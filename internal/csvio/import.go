package csvio

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"pennie/internal/categorize"
	"pennie/internal/core"
)

// DefaultChunkSize is the number of rows handed to the sink at once.
const DefaultChunkSize = 100

var (
	ErrEmptyFile      = errors.New("csv file is empty")
	ErrMissingColumns = errors.New("csv header is missing required columns")
)

type RowStatus string

const (
	RowImported RowStatus = "imported"
	RowSkipped  RowStatus = "skipped"
)

// RowResult reports what happened to one data row. Line is the 1-based line
// number in the file.
type RowResult struct {
	Line     int       `json:"line"`
	Status   RowStatus `json:"status"`
	Reason   string    `json:"reason,omitempty"`
	Merchant string    `json:"merchant,omitempty"`
}

type ImportReport struct {
	BatchID         string      `json:"batchId"`
	Imported        int         `json:"imported"`
	Skipped         int         `json:"skipped"`
	AutoCategorized int         `json:"autoCategorized"`
	Rows            []RowResult `json:"rows"`
	// Cancelled is set when the context ended before every row was merged.
	// Chunks merged before that point are kept.
	Cancelled bool `json:"cancelled"`
}

// Sink receives parsed rows in file order.
type Sink interface {
	MergeImported(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
}

// Progress is called after each merged chunk.
type Progress func(rowsRead, imported int)

type Importer struct {
	Matcher    *categorize.Matcher
	ChunkSize  int
	OnProgress Progress
}

type columns struct {
	date, merchant, amount   int
	category, account, notes int
}

// locateColumns finds columns by case-insensitive header match. A whole
// header beats a whole word, which beats a substring, so "Last Update" only
// serves as the date column when nothing better exists. Optional columns
// are -1 when absent.
func locateColumns(header []string) (columns, error) {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	find := func(skip func(i int) bool, keys ...string) int {
		for _, match := range []func(h, k string) bool{headerIs, hasWord, strings.Contains} {
			for _, k := range keys {
				for i, h := range lower {
					if skip != nil && skip(i) {
						continue
					}
					if match(h, k) {
						return i
					}
				}
			}
		}
		return -1
	}

	c := columns{
		category: find(nil, "category"),
		account:  find(nil, "account"),
		notes:    find(nil, "notes", "memo"),
	}
	// "Category Name" or "Account Name" must not be taken for the merchant.
	c.merchant = find(func(i int) bool {
		return i == c.category || i == c.account ||
			strings.Contains(lower[i], "account") || strings.Contains(lower[i], "category")
	}, "description", "merchant", "name")
	c.date = find(nil, "date")
	c.amount = find(nil, "amount")

	var missing []string
	if c.date < 0 {
		missing = append(missing, "date")
	}
	if c.merchant < 0 {
		missing = append(missing, "description")
	}
	if c.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return c, nil
}

func headerIs(h, k string) bool { return h == k }

// hasWord reports whether k is one of the letter runs in h, so
// "posting_date" has the word "date" and "last update" does not.
func hasWord(h, k string) bool {
	return slices.Contains(strings.FieldsFunc(h, func(r rune) bool { return !unicode.IsLetter(r) }), k)
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Import reads a CSV with a header row and merges valid rows into sink in
// chunks. Malformed rows are reported as skipped. A cancelled ctx stops
// before the next chunk; chunks already merged stay merged.
func (im *Importer) Import(ctx context.Context, r io.Reader, sink Sink) (ImportReport, error) {
	report := ImportReport{BatchID: uuid.NewString()}

	matcher := im.Matcher
	if matcher == nil {
		matcher = categorize.Default()
	}
	chunkSize := im.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true

	header, err := csvr.Read()
	if errors.Is(err, io.EOF) {
		return report, ErrEmptyFile
	}
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return report, err
	}

	var (
		chunk     []core.Transaction
		chunkRows []int // indexes into report.Rows
		rowsRead  int
	)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := sink.MergeImported(ctx, chunk); err != nil {
			return fmt.Errorf("merge chunk: %w", err)
		}
		for _, i := range chunkRows {
			report.Rows[i].Status = RowImported
		}
		report.Imported += len(chunk)
		for _, tx := range chunk {
			if tx.HasTag(categorize.AutoTag) {
				report.AutoCategorized++
			}
		}
		chunk, chunkRows = chunk[:0], chunkRows[:0]
		if im.OnProgress != nil {
			im.OnProgress(rowsRead, report.Imported)
		}
		return nil
	}

	for {
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowsRead++

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			report.Rows = append(report.Rows, RowResult{Line: perr.Line, Status: RowSkipped, Reason: perr.Err.Error()})
			continue
		}
		if err != nil {
			return report, fmt.Errorf("read row %d: %w", rowsRead, err)
		}
		if isBlank(rec) {
			rowsRead--
			continue
		}

		line, _ := csvr.FieldPos(0)
		tx, reason := parseRow(rec, cols, matcher)
		if reason != "" {
			report.Rows = append(report.Rows, RowResult{Line: line, Status: RowSkipped, Reason: reason, Merchant: tx.Merchant})
			continue
		}
		// Marked imported once its chunk is merged.
		report.Rows = append(report.Rows, RowResult{Line: line, Status: RowSkipped, Reason: "not merged", Merchant: tx.Merchant})
		chunk = append(chunk, tx)
		chunkRows = append(chunkRows, len(report.Rows)-1)

		if len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				if ctx.Err() != nil {
					report.Cancelled = true
					break
				}
				return finish(ctx, report), err
			}
		}
	}
	if !report.Cancelled {
		if err := flush(); err != nil {
			if ctx.Err() == nil {
				return finish(ctx, report), err
			}
			report.Cancelled = true
		}
	}
	return finish(ctx, report), nil
}

func finish(ctx context.Context, report ImportReport) ImportReport {
	for i := range report.Rows {
		if report.Rows[i].Status == RowImported {
			report.Rows[i].Reason = ""
		}
	}
	report.Skipped = 0
	for _, row := range report.Rows {
		if row.Status == RowSkipped {
			report.Skipped++
		}
	}
	slog.InfoContext(ctx, "CSV import finished",
		"batch_id", report.BatchID,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"auto_categorized", report.AutoCategorized,
		"cancelled", report.Cancelled)
	return report
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseRow returns a non-empty reason when the row must be skipped.
func parseRow(rec []string, cols columns, matcher *categorize.Matcher) (core.Transaction, string) {
	tx := core.Transaction{
		Merchant: field(rec, cols.merchant),
		Account:  field(rec, cols.account),
		Notes:    field(rec, cols.notes),
	}

	dateStr := field(rec, cols.date)
	amountStr := field(rec, cols.amount)
	switch {
	case dateStr == "":
		return tx, "missing date"
	case tx.Merchant == "":
		return tx, "missing description"
	case amountStr == "":
		return tx, "missing amount"
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return tx, "invalid date"
	}
	tx.Date = date.Format(core.DateLayout)

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return tx, "invalid amount"
	}
	tx.Amount = amount

	if c, ok := categorize.SuggestCategory(field(rec, cols.category)); ok && c != core.Other {
		tx.Category = c
		return tx, ""
	}
	tx.Category = matcher.Categorize(tx.Merchant)
	if tx.Category != core.Other {
		tx.Tags = append(tx.Tags, categorize.AutoTag)
	}
	return tx, ""
}
