package categorize

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pennie/internal/core"
)

func TestLoadTable(t *testing.T) {
	doc := `
rules:
  - merchant: "Blue Bottle"
    category: "food & dining"
  - merchant: "Hetzner"
    category: "Business"
`
	rules, err := LoadTable(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Key != "Blue Bottle" || rules[0].Category != core.FoodDining {
		t.Fatalf("rule 0 = %+v", rules[0])
	}
	if rules[1].Category != core.Business {
		t.Fatalf("rule 1 = %+v", rules[1])
	}
}

func TestLoadTableUnknownCategory(t *testing.T) {
	doc := "rules:\n  - merchant: X\n    category: Groceries\n"
	if _, err := LoadTable(strings.NewReader(doc)); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestLoadTableEmpty(t *testing.T) {
	rules, err := LoadTable(strings.NewReader(""))
	if err != nil || len(rules) != 0 {
		t.Fatalf("got %v, %v", rules, err)
	}
}

func TestLoadFile(t *testing.T) {
	m, err := LoadFile("")
	if err != nil || m != Default() {
		t.Fatalf("empty path should return default matcher: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - merchant: HETZNER\n    category: Business\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err = LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := m.Categorize("hetzner online"); got != core.Business {
		t.Fatalf("got %q", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSuggestCategory(t *testing.T) {
	cases := []struct {
		in   string
		want core.Category
		ok   bool
	}{
		{"Food & Dining", core.FoodDining, true},
		{"food & dinning", core.FoodDining, true},
		{"shoping", core.Shopping, true},
		{"Incme", core.Income, true},
		{"Taxs", core.Taxes, true},
		{"Groceries", core.Other, false},
		{"", core.Other, false},
	}
	for _, tc := range cases {
		got, ok := SuggestCategory(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("SuggestCategory(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
