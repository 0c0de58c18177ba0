package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pennie/internal/core"
	ports "pennie/internal/sheets"
)

var _ ports.TransactionWriter = (*Client)(nil)

const defaultSheetName = "Transactions"

type Config struct {
	SpreadsheetID string
	// SheetName is the base name; the transaction year is prefixed.
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	now           func() time.Time
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = defaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     strings.TrimSpace(sheetName),
		now:           time.Now,
	}
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// AppendTransactions writes txs to the sheet of their year, one Append call
// per year present in the batch. Refs of every written range are joined
// with commas.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", nil
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	byYear := map[int][][]any{}
	for _, tx := range txs {
		year := tx.Time().Year()
		if year <= 1970 {
			year = c.now().Year()
		}
		byYear[year] = append(byYear[year], ports.Row(tx))
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	refs := make([]string, 0, len(years))
	for _, year := range years {
		sheet := yearPrefixedName(c.sheetBase, year)
		rng := fmt.Sprintf("'%s'!A:G", sheet)
		resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: byYear[year]}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return strings.Join(refs, ","), fmt.Errorf("append to sheet %s: %w", sheet, err)
		}
		ref := rng
		if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
			ref = resp.Updates.UpdatedRange
		}
		refs = append(refs, ref)
		slog.InfoContext(ctx, "Appended transactions to sheet",
			"sheet", sheet,
			"rows", len(byYear[year]),
			"ref", ref)
	}
	return strings.Join(refs, ","), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
