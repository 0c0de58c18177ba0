// Package progress computes derived completion figures for goals and
// budget categories.
package progress

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"pennie/internal/core"
)

// OnTrackThreshold is the funded fraction at which a goal counts as on
// track.
var OnTrackThreshold = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

// GoalProgress keeps the raw percent separate from the bar width: Percent
// can exceed 100 for over-funded goals, BarWidth never does. Values are
// unrounded; JSON output rounds them to 2 decimals.
type GoalProgress struct {
	Percent   float64         `json:"percent"`
	BarWidth  float64         `json:"barWidth"`
	Remaining decimal.Decimal `json:"remaining"`
	OnTrack   bool            `json:"onTrack"`
}

type BudgetProgress struct {
	UtilizationPercent float64         `json:"utilizationPercent"`
	OverBudget         bool            `json:"overBudget"`
	Remaining          decimal.Decimal `json:"remaining"`
	BarWidth           float64         `json:"barWidth"`
}

func Goal(g core.Goal) GoalProgress {
	pct := percent(g.Current, g.Target)
	if pct < 0 {
		pct = 0
	}
	return GoalProgress{
		Percent:   pct,
		BarWidth:  BarWidth(pct),
		Remaining: g.Target.Sub(g.Current),
		OnTrack:   g.Current.GreaterThanOrEqual(g.Target.Mul(OnTrackThreshold)),
	}
}

func Budget(b core.BudgetCategory) BudgetProgress {
	pct := percent(b.Spent, b.Budgeted)
	return BudgetProgress{
		UtilizationPercent: pct,
		OverBudget:         b.Spent.GreaterThan(b.Budgeted),
		Remaining:          b.Budgeted.Sub(b.Spent),
		BarWidth:           BarWidth(pct),
	}
}

// BarWidth clamps a percentage to 0..100 for display.
func BarWidth(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// Contribute adds amount (negative to withdraw) to the goal. Current never
// drops below zero.
func Contribute(g core.Goal, amount decimal.Decimal) core.Goal {
	g.Current = decimal.Max(g.Current.Add(amount), decimal.Zero)
	return g
}

func percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

// Round2 rounds a percentage for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (p GoalProgress) MarshalJSON() ([]byte, error) {
	type plain GoalProgress
	p.Percent = Round2(p.Percent)
	p.BarWidth = Round2(p.BarWidth)
	return json.Marshal(plain(p))
}

func (p BudgetProgress) MarshalJSON() ([]byte, error) {
	type plain BudgetProgress
	p.UtilizationPercent = Round2(p.UtilizationPercent)
	p.BarWidth = Round2(p.BarWidth)
	return json.Marshal(plain(p))
}
