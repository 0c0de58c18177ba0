// Package ledger derives filtered, sorted views of the transaction list.
package ledger

import (
	"net/url"
	"strings"
	"time"

	"pennie/internal/core"
)

// All disables a filter field.
const All = "all"

type (
	DateRange string
	SortKey   string
	SortOrder string
)

const (
	RangeAll     DateRange = All
	RangeWeek    DateRange = "week"
	RangeMonth   DateRange = "month"
	RangeQuarter DateRange = "quarter"
	RangeYear    DateRange = "year"

	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByMerchant SortKey = "merchant"
	SortByCategory SortKey = "category"
	SortByAccount  SortKey = "account"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Filters selects and orders a view. The zero value, once normalized,
// matches everything and sorts newest first.
type Filters struct {
	Search    string    `json:"search"`
	Category  string    `json:"category"`
	Account   string    `json:"account"`
	DateRange DateRange `json:"dateRange"`
	SortBy    SortKey   `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// Normalize fills empty or unknown fields with their defaults.
func (f Filters) Normalize() Filters {
	f.Search = strings.TrimSpace(f.Search)
	if strings.TrimSpace(f.Category) == "" {
		f.Category = All
	}
	if strings.TrimSpace(f.Account) == "" {
		f.Account = All
	}
	switch f.DateRange {
	case RangeAll, RangeWeek, RangeMonth, RangeQuarter, RangeYear:
	default:
		f.DateRange = RangeAll
	}
	switch f.SortBy {
	case SortByDate, SortByAmount, SortByMerchant, SortByCategory, SortByAccount:
	default:
		f.SortBy = SortByDate
	}
	if f.SortOrder != Asc {
		f.SortOrder = Desc
	}
	return f
}

// IsZero reports whether f selects every transaction.
func (f Filters) IsZero() bool {
	f = f.Normalize()
	return f.Search == "" && f.Category == All && f.Account == All && f.DateRange == RangeAll
}

// ParseFilters reads filters from query parameters. Unknown values fall back
// to defaults.
func ParseFilters(q url.Values) Filters {
	return Filters{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Account:   q.Get("account"),
		DateRange: DateRange(strings.ToLower(q.Get("dateRange"))),
		SortBy:    SortKey(strings.ToLower(q.Get("sortBy"))),
		SortOrder: SortOrder(strings.ToLower(q.Get("sortOrder"))),
	}.Normalize()
}

// Cutoff returns the earliest date included by r relative to now. ok is
// false for RangeAll. Month-based ranges step back whole calendar months to
// the first of the month.
func (r DateRange) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	firstOfMonth := func(back int) time.Time {
		return time.Date(now.Year(), now.Month()-time.Month(back), 1, 0, 0, 0, 0, now.Location())
	}
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return firstOfMonth(1), true
	case RangeQuarter:
		return firstOfMonth(3), true
	case RangeYear:
		return firstOfMonth(12), true
	default:
		return time.Time{}, false
	}
}

type predicate func(core.Transaction) bool

func (f Filters) predicates(now time.Time) []predicate {
	var preds []predicate
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(tx core.Transaction) bool {
			return strings.Contains(strings.ToLower(tx.Merchant), needle) ||
				strings.Contains(strings.ToLower(tx.Notes), needle) ||
				strings.Contains(strings.ToLower(string(tx.Category)), needle)
		})
	}
	if f.Category != All {
		preds = append(preds, func(tx core.Transaction) bool {
			return string(tx.Category) == f.Category
		})
	}
	if f.Account != All {
		preds = append(preds, func(tx core.Transaction) bool {
			return tx.Account == f.Account
		})
	}
	if cutoff, ok := f.DateRange.Cutoff(now); ok {
		preds = append(preds, func(tx core.Transaction) bool {
			return !tx.Time().Before(cutoff)
		})
	}
	return preds
}

// Filter returns the transactions matching every active filter, in input
// order.
func Filter(txs []core.Transaction, f Filters, now time.Time) []core.Transaction {
	preds := f.Normalize().predicates(now)
	out := make([]core.Transaction, 0, len(txs))
next:
	for _, tx := range txs {
		for _, p := range preds {
			if !p(tx) {
				continue next
			}
		}
		out = append(out, tx.Clone())
	}
	return out
}

// FilterAndSort builds the derived view. The input slice is not modified.
func FilterAndSort(txs []core.Transaction, f Filters, now time.Time) []core.Transaction {
	f = f.Normalize()
	out := Filter(txs, f, now)
	Sort(out, f.SortBy, f.SortOrder)
	return out
}
