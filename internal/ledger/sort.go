package ledger

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pennie/internal/core"
)

// Sort orders txs in place, stably. Amounts compare by absolute value and
// strings compare case-insensitively.
func Sort(txs []core.Transaction, by SortKey, order SortOrder) {
	cmp := comparator(by)
	desc := order != Asc
	sort.SliceStable(txs, func(i, j int) bool {
		c := cmp(txs[i], txs[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func comparator(by SortKey) func(a, b core.Transaction) int {
	switch by {
	case SortByAmount:
		return func(a, b core.Transaction) int {
			return a.Amount.Abs().Cmp(b.Amount.Abs())
		}
	case SortByMerchant:
		return stringComparator(func(tx core.Transaction) string { return tx.Merchant })
	case SortByCategory:
		return stringComparator(func(tx core.Transaction) string { return string(tx.Category) })
	case SortByAccount:
		return stringComparator(func(tx core.Transaction) string { return tx.Account })
	default:
		return func(a, b core.Transaction) int {
			return a.Time().Compare(b.Time())
		}
	}
}

// A collator is not safe for concurrent use, so one is built per sort.
func stringComparator(field func(core.Transaction) string) func(a, b core.Transaction) int {
	col := collate.New(language.English, collate.IgnoreCase)
	return func(a, b core.Transaction) int {
		return col.CompareString(field(a), field(b))
	}
}
