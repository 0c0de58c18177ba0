// Package categorize assigns spending categories to merchant descriptions.
//
// Matching runs in three stages: an exact lookup on the normalized merchant,
// a substring match over the ordered merchant table, and a keyword fallback.
// Anything left over is Other.
package categorize

import (
	"strings"

	"pennie/internal/core"
)

// AutoTag marks transactions whose category was assigned by the matcher
// rather than supplied by the user.
const AutoTag = "auto-categorized"

// Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	table []Rule
	exact map[string]core.Category
}

var defaultMatcher = New(builtinTable)

// Default returns the matcher over the built-in merchant table.
func Default() *Matcher { return defaultMatcher }

// New builds a matcher from rules in precedence order. Keys are normalized;
// rules with an empty key or an unknown category are ignored. When a key is
// repeated the first occurrence wins.
func New(rules []Rule) *Matcher {
	m := &Matcher{
		table: make([]Rule, 0, len(rules)),
		exact: make(map[string]core.Category, len(rules)),
	}
	m.add(rules)
	return m
}

func (m *Matcher) add(rules []Rule) {
	for _, r := range rules {
		key := normalize(r.Key)
		if key == "" || !r.Category.Valid() {
			continue
		}
		if _, dup := m.exact[key]; dup {
			continue
		}
		m.exact[key] = r.Category
		m.table = append(m.table, Rule{Key: key, Category: r.Category})
	}
}

// Extend returns a new matcher with extra rules appended after the existing
// table, so existing entries keep precedence.
func (m *Matcher) Extend(rules []Rule) *Matcher {
	out := New(m.table)
	out.add(rules)
	return out
}

// Rules returns a copy of the table in precedence order.
func (m *Matcher) Rules() []Rule {
	return append([]Rule(nil), m.table...)
}

// Categorize maps a merchant description to a category. It never fails.
func (m *Matcher) Categorize(merchant string) core.Category {
	key := normalize(merchant)
	if key == "" {
		return core.Other
	}
	if c, ok := m.exact[key]; ok {
		return c
	}
	for _, r := range m.table {
		if strings.Contains(key, r.Key) || strings.Contains(r.Key, key) {
			return r.Category
		}
	}
	if c, ok := matchKeywords(strings.ToLower(key)); ok {
		return c
	}
	return core.Other
}

// BulkCategorize returns a copy of txs where every transaction still in
// Other has been categorized. Transactions with any other category are
// returned unchanged. changed counts transactions whose category moved.
func (m *Matcher) BulkCategorize(txs []core.Transaction) (out []core.Transaction, changed int) {
	out = make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx = tx.Clone()
		if tx.Category == core.Other {
			if c := m.Categorize(tx.Merchant); c != core.Other {
				tx.Category = c
				changed++
			}
		}
		out[i] = tx
	}
	return out, changed
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
