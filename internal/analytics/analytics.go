// Package analytics computes derived summaries over transactions and
// accounts. Nothing here is stored; every value is recomputed on demand.
package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

const (
	// TopListSize is the number of categories shown in ranked lists.
	TopListSize = 5
	// TopChartSize is the number of categories shown in the donut chart.
	TopChartSize = 4

	// MonthsInSeries is the length of the trailing monthly series.
	MonthsInSeries = 6
)

var hundred = decimal.NewFromInt(100)

type CategoryTotal struct {
	Category  core.Category   `json:"category"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
	AvgAmount decimal.Decimal `json:"avgAmount"`
}

type MonthBucket struct {
	Month    string          `json:"month"`
	Year     int             `json:"year"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type Summary struct {
	Income            decimal.Decimal `json:"income"`
	Expenses          decimal.Decimal `json:"expenses"`
	NetFlow           decimal.Decimal `json:"netFlow"`
	SavingsRate       float64         `json:"savingsRate"`
	CategoryTotals    []CategoryTotal `json:"categoryTotals"`
	MonthlyData       []MonthBucket   `json:"monthlyData"`
	ThisMonthExpenses decimal.Decimal `json:"thisMonthExpenses"`
	LastMonthExpenses decimal.Decimal `json:"lastMonthExpenses"`
	MonthOverMonth    float64         `json:"monthOverMonth"`
	NetWorth          decimal.Decimal `json:"netWorth"`
	TotalAssets       decimal.Decimal `json:"totalAssets"`
	TotalLiabilities  decimal.Decimal `json:"totalLiabilities"`
}

// MarshalJSON rounds the ratios to 2 decimals. The struct itself keeps the
// unrounded values.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	s.SavingsRate = math.Round(s.SavingsRate*100) / 100
	s.MonthOverMonth = math.Round(s.MonthOverMonth*100) / 100
	return json.Marshal(plain(s))
}

// Aggregator anchors calendar computations to Now.
type Aggregator struct {
	Now func() time.Time
}

func New() *Aggregator {
	return &Aggregator{Now: time.Now}
}

func (a *Aggregator) now() time.Time {
	if a == nil || a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Aggregate summarizes txs, which serve as both the view and the full
// collection.
func (a *Aggregator) Aggregate(txs []core.Transaction, accounts []core.Account) Summary {
	return a.AggregateView(txs, txs, accounts)
}

// AggregateView computes flow totals and category totals over view, and the
// monthly series and month-over-month change over full.
func (a *Aggregator) AggregateView(view, full []core.Transaction, accounts []core.Account) Summary {
	now := a.now()

	s := Summary{
		Income:         decimal.Zero,
		Expenses:       decimal.Zero,
		CategoryTotals: CategoryTotals(view),
		MonthlyData:    MonthlySeries(full, now, MonthsInSeries),
	}
	for _, tx := range view {
		switch {
		case tx.IsIncome():
			s.Income = s.Income.Add(tx.Amount)
		case tx.IsExpense():
			s.Expenses = s.Expenses.Add(tx.Amount.Abs())
		}
	}
	s.NetFlow = s.Income.Sub(s.Expenses)
	s.SavingsRate = SavingsRate(s.NetFlow, s.Income)

	thisY, thisM, _ := now.Date()
	lastY, lastM, _ := time.Date(thisY, thisM-1, 1, 0, 0, 0, 0, now.Location()).Date()
	s.ThisMonthExpenses = ExpensesIn(full, thisY, thisM)
	s.LastMonthExpenses = ExpensesIn(full, lastY, lastM)
	s.MonthOverMonth = MonthOverMonth(s.ThisMonthExpenses, s.LastMonthExpenses)

	s.TotalAssets, s.TotalLiabilities = AssetsAndLiabilities(accounts)
	s.NetWorth = NetWorth(accounts)
	return s
}

// CategoryTotals groups expenses by category in order of first occurrence.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	index := map[core.Category]int{}
	var out []CategoryTotal
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(tx.Amount.Abs())
		out[i].Count++
	}
	for i := range out {
		out[i].AvgAmount = out[i].Total.DivRound(decimal.NewFromInt(int64(out[i].Count)), 2)
	}
	return out
}

// TopCategories returns the n largest totals. Ties keep first-occurrence
// order. The input is not reordered.
func TopCategories(totals []CategoryTotal, n int) []CategoryTotal {
	out := append([]CategoryTotal(nil), totals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// MonthlySeries buckets txs into the trailing months calendar months ending
// with the month containing now, oldest first.
func MonthlySeries(txs []core.Transaction, now time.Time, months int) []MonthBucket {
	if months <= 0 {
		return nil
	}
	type ym struct {
		y int
		m time.Month
	}
	out := make([]MonthBucket, months)
	index := make(map[ym]int, months)
	for i := 0; i < months; i++ {
		first := time.Date(now.Year(), now.Month()-time.Month(months-1-i), 1, 0, 0, 0, 0, now.Location())
		out[i] = MonthBucket{
			Month:    first.Format("Jan"),
			Year:     first.Year(),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		index[ym{first.Year(), first.Month()}] = i
	}
	for _, tx := range txs {
		t := tx.Time()
		i, ok := index[ym{t.Year(), t.Month()}]
		if !ok {
			continue
		}
		switch {
		case tx.IsIncome():
			out[i].Income = out[i].Income.Add(tx.Amount)
		case tx.IsExpense():
			out[i].Expenses = out[i].Expenses.Add(tx.Amount.Abs())
		}
	}
	return out
}

// ExpensesIn sums |amount| of expenses dated in the given month.
func ExpensesIn(txs []core.Transaction, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		t := tx.Time()
		if t.Year() == year && t.Month() == month {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total
}

// MonthOverMonth is the percent change from last to this. It is 0 when last
// is 0.
func MonthOverMonth(this, last decimal.Decimal) float64 {
	return percentOf(this.Sub(last), last)
}

// SavingsRate is net as a percent of income, 0 when income is 0.
func SavingsRate(net, income decimal.Decimal) float64 {
	return percentOf(net, income)
}

func percentOf(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).Mul(hundred).InexactFloat64()
}

// NetWorth sums signed balances across accounts.
func NetWorth(accounts []core.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// AssetsAndLiabilities splits balances by sign; liabilities are returned as
// a positive magnitude, so assets - liabilities equals NetWorth.
func AssetsAndLiabilities(accounts []core.Account) (assets, liabilities decimal.Decimal) {
	assets, liabilities = decimal.Zero, decimal.Zero
	for _, a := range accounts {
		if a.Balance.IsNegative() {
			liabilities = liabilities.Add(a.Balance.Abs())
		} else {
			assets = assets.Add(a.Balance)
		}
	}
	return assets, liabilities
}
