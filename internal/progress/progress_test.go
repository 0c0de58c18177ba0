package progress

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGoal(t *testing.T) {
	cases := []struct {
		name      string
		current   string
		target    string
		percent   float64
		bar       float64
		remaining string
		onTrack   bool
	}{
		{"overfunded", "150", "100", 150, 100, "-50", true},
		{"half", "500", "1000", 50, 50, "500", true},
		{"just on track", "100", "1000", 10, 10, "900", true},
		{"behind", "99.99", "1000", 9.999, 9.999, "900.01", false},
		{"zero target", "20", "0", 0, 0, "-20", true},
		{"negative current", "-10", "100", 0, 0, "110", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Goal(core.Goal{Current: d(tc.current), Target: d(tc.target)})
			if p.Percent != tc.percent {
				t.Errorf("percent = %v, want %v", p.Percent, tc.percent)
			}
			if p.BarWidth != tc.bar {
				t.Errorf("bar = %v, want %v", p.BarWidth, tc.bar)
			}
			if !p.Remaining.Equal(d(tc.remaining)) {
				t.Errorf("remaining = %s, want %s", p.Remaining, tc.remaining)
			}
			if p.OnTrack != tc.onTrack {
				t.Errorf("onTrack = %v, want %v", p.OnTrack, tc.onTrack)
			}
		})
	}
}

func TestBudget(t *testing.T) {
	p := Budget(core.BudgetCategory{Budgeted: d("400"), Spent: d("500")})
	if p.UtilizationPercent != 125 || !p.OverBudget || p.BarWidth != 100 {
		t.Fatalf("got %+v", p)
	}
	if !p.Remaining.Equal(d("-100")) {
		t.Fatalf("remaining = %s", p.Remaining)
	}

	p = Budget(core.BudgetCategory{Budgeted: decimal.Zero, Spent: d("10")})
	if p.UtilizationPercent != 0 || !p.OverBudget {
		t.Fatalf("zero budget: %+v", p)
	}

	p = Budget(core.BudgetCategory{Budgeted: d("100"), Spent: d("100")})
	if p.OverBudget {
		t.Fatal("spending exactly the budget is not over budget")
	}
}

func TestContributeNeverBelowZero(t *testing.T) {
	g := core.Goal{Current: d("50"), Target: d("100")}
	g = Contribute(g, d("25"))
	if !g.Current.Equal(d("75")) {
		t.Fatalf("current = %s", g.Current)
	}
	g = Contribute(g, d("-200"))
	if !g.Current.IsZero() {
		t.Fatalf("current = %s", g.Current)
	}
}

func TestPercentIsUnroundedUntilJSON(t *testing.T) {
	p := Goal(core.Goal{Current: d("1"), Target: d("3")})
	if p.Percent <= 33.33 || p.Percent >= 33.34 {
		t.Fatalf("percent = %v, want unrounded 33.333...", p.Percent)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"percent":33.33,`) || !strings.Contains(string(out), `"barWidth":33.33,`) {
		t.Errorf("json = %s", out)
	}

	b := Budget(core.BudgetCategory{Budgeted: d("3"), Spent: d("2")})
	out, err = json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"utilizationPercent":66.67,`) {
		t.Errorf("json = %s", out)
	}
}
