package ledger

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

var now = time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

func tx(id int64, merchant, amount string, c core.Category, account, date string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Merchant: merchant,
		Amount:   decimal.RequireFromString(amount),
		Category: c,
		Account:  account,
		Date:     date,
	}
}

func sample() []core.Transaction {
	return []core.Transaction{
		tx(1, "STARBUCKS", "-4.75", core.FoodDining, "Chase Checking", "2025-03-18"),
		tx(2, "Payroll", "3500", core.Income, "Chase Checking", "2025-03-01"),
		tx(3, "Shell", "-40", core.AutoTransport, "Amex", "2025-02-10"),
		tx(4, "amazon", "-120", core.Shopping, "Amex", "2024-12-24"),
		tx(5, "Netflix", "-15.99", core.Entertainment, "Amex", "2024-03-01"),
		tx(6, "Broken", "-1", core.Other, "Cash", "not-a-date"),
	}
}

func ids(txs []core.Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAllSentinelsIsIdentitySet(t *testing.T) {
	in := sample()
	for _, f := range []Filters{
		{},
		{Category: All, Account: All, DateRange: RangeAll, Search: ""},
	} {
		out := FilterAndSort(in, f, now)
		if len(out) != len(in) {
			t.Fatalf("expected %d transactions, got %d", len(in), len(out))
		}
		seen := map[int64]bool{}
		for _, o := range out {
			seen[o.ID] = true
		}
		for _, i := range in {
			if !seen[i.ID] {
				t.Fatalf("transaction %d missing from view", i.ID)
			}
		}
	}
}

func TestFilters(t *testing.T) {
	cases := []struct {
		name string
		f    Filters
		want []int64
	}{
		{"search merchant", Filters{Search: "star"}, []int64{1}},
		{"search category", Filters{Search: "shopping"}, []int64{4}},
		{"search case insensitive", Filters{Search: "NETFLIX"}, []int64{5}},
		{"category", Filters{Category: string(core.Income)}, []int64{2}},
		{"account", Filters{Account: "Amex"}, []int64{3, 4, 5}},
		{"week", Filters{DateRange: RangeWeek}, []int64{1}},
		{"month", Filters{DateRange: RangeMonth}, []int64{1, 2, 3}},
		{"quarter", Filters{DateRange: RangeQuarter}, []int64{1, 2, 3, 4}},
		{"year", Filters{DateRange: RangeYear}, []int64{1, 2, 3, 4, 5}},
		{"combined", Filters{Account: "Amex", DateRange: RangeQuarter}, []int64{3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(sample(), tc.f, now))
			if !equalIDs(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSearchMatchesNotes(t *testing.T) {
	in := sample()
	in[2].Notes = "road trip to Tahoe"
	got := ids(Filter(in, Filters{Search: "tahoe"}, now))
	if !equalIDs(got, []int64{3}) {
		t.Fatalf("got %v", got)
	}
}

func TestCutoffIsCalendarAware(t *testing.T) {
	endOfMarch := time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC)
	c, ok := RangeMonth.Cutoff(endOfMarch)
	if !ok || !c.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("month cutoff = %v", c)
	}
	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	c, _ = RangeQuarter.Cutoff(jan)
	if !c.Equal(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("quarter cutoff = %v", c)
	}
	if _, ok := RangeAll.Cutoff(jan); ok {
		t.Fatal("all should have no cutoff")
	}
}

func TestSortByAmountUsesAbsoluteValue(t *testing.T) {
	in := []core.Transaction{
		tx(1, "a", "-50", core.Other, "", "2025-01-01"),
		tx(2, "b", "100", core.Income, "", "2025-01-01"),
		tx(3, "c", "-500", core.Other, "", "2025-01-01"),
	}
	desc := FilterAndSort(in, Filters{SortBy: SortByAmount}, now)
	if got := ids(desc); !equalIDs(got, []int64{3, 2, 1}) {
		t.Fatalf("desc: got %v", got)
	}
	asc := FilterAndSort(in, Filters{SortBy: SortByAmount, SortOrder: Asc}, now)
	if got := ids(asc); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("asc: got %v", got)
	}
}

func TestSortByDateDefaultsNewestFirst(t *testing.T) {
	got := ids(FilterAndSort(sample(), Filters{}, now))
	// unparseable date sorts as epoch, i.e. last
	want := []int64{1, 2, 3, 4, 5, 6}
	if !equalIDs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSortStringsCaseInsensitive(t *testing.T) {
	got := ids(FilterAndSort(sample(), Filters{SortBy: SortByMerchant, SortOrder: Asc}, now))
	// amazon, Broken, Netflix, Payroll, Shell, STARBUCKS
	want := []int64{4, 6, 5, 2, 3, 1}
	if !equalIDs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSortIsStable(t *testing.T) {
	in := []core.Transaction{
		tx(1, "x", "-10", core.Other, "A", "2025-01-01"),
		tx(2, "y", "-10", core.Other, "A", "2025-01-01"),
		tx(3, "z", "-10", core.Other, "A", "2025-01-01"),
	}
	for _, by := range []SortKey{SortByAmount, SortByDate, SortByAccount, SortByCategory} {
		if got := ids(FilterAndSort(in, Filters{SortBy: by}, now)); !equalIDs(got, []int64{1, 2, 3}) {
			t.Fatalf("sort by %s not stable: %v", by, got)
		}
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	in := sample()
	in[0].Tags = []string{"coffee"}
	before := ids(in)
	out := FilterAndSort(in, Filters{SortBy: SortByAmount}, now)
	if !equalIDs(ids(in), before) {
		t.Fatal("input reordered")
	}
	for i := range out {
		if out[i].ID == 1 {
			out[i].Tags[0] = "tea"
		}
	}
	if in[0].Tags[0] != "coffee" {
		t.Fatal("view shares tags with input")
	}
}

func TestParseFilters(t *testing.T) {
	q := url.Values{
		"search":    {"coffee"},
		"category":  {"Food & Dining"},
		"dateRange": {"MONTH"},
		"sortBy":    {"bogus"},
		"sortOrder": {"asc"},
	}
	f := ParseFilters(q)
	want := Filters{
		Search:    "coffee",
		Category:  "Food & Dining",
		Account:   All,
		DateRange: RangeMonth,
		SortBy:    SortByDate,
		SortOrder: Asc,
	}
	if f != want {
		t.Fatalf("got %+v, want %+v", f, want)
	}
	if !ParseFilters(url.Values{}).IsZero() {
		t.Fatal("empty query should select everything")
	}
}
