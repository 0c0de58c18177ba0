package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Cash       AccountType = "cash"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
	Loan       AccountType = "loan"

	SavingsGoal GoalType = "savings"
	DebtGoal    GoalType = "debt"

	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"

	IncomeKind  Kind = "income"
	ExpenseKind Kind = "expense"
)

// DateLayout is the ISO-8601 calendar date layout used for transaction dates.
const DateLayout = "2006-01-02"

type (
	AccountType string
	GoalType    string
	Trend       string

	// Kind is the semantic type chosen on the entry form.
	Kind string

	Transaction struct {
		ID       int64           `json:"id"`
		Merchant string          `json:"merchant"`
		Amount   decimal.Decimal `json:"amount"` // negative = expense, positive = income
		Category Category        `json:"category"`
		Account  string          `json:"account"`
		// AccountID is preferred over Account when set.
		AccountID int64    `json:"accountId,omitempty"`
		Date      string   `json:"date"`
		Location  string   `json:"location"`
		Notes     string   `json:"notes"`
		Tags      []string `json:"tags"`
		Recurring bool     `json:"recurring"`
		Verified  bool     `json:"verified"`
	}

	Account struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		Type          AccountType     `json:"type"`
		Balance       decimal.Decimal `json:"balance"`
		Institution   string          `json:"institution"`
		AccountNumber string          `json:"accountNumber"`
		Connected     bool            `json:"connected"`
		AutoSync      bool            `json:"autoSync"`
		LastUpdate    string          `json:"lastUpdate"`
	}

	Goal struct {
		ID                  int64           `json:"id"`
		Name                string          `json:"name"`
		Target              decimal.Decimal `json:"target"`
		Current             decimal.Decimal `json:"current"`
		Type                GoalType        `json:"type"`
		MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
		Deadline            string          `json:"deadline"`
		Priority            int             `json:"priority"`
		Emoji               string          `json:"emoji"`
		LinkedAccounts      []string        `json:"linkedAccounts"`
	}

	// BudgetCategory is keyed by Name. Remaining must always equal
	// Budgeted - Spent; use AddSpend or Recompute after mutating Spent.
	BudgetCategory struct {
		Name       string          `json:"name"`
		Budgeted   decimal.Decimal `json:"budgeted"`
		Spent      decimal.Decimal `json:"spent"`
		Remaining  decimal.Decimal `json:"remaining"`
		LastMonth  decimal.Decimal `json:"lastMonth"`
		YearToDate decimal.Decimal `json:"yearToDate"`
		Trend      Trend           `json:"trend"`
	}
)

var (
	ErrEmptyMerchant    = errors.New("empty merchant")
	ErrMerchantTooLong  = errors.New("merchant too long (max 200 characters)")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrSignMismatch     = errors.New("amount sign does not match transaction type")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidType      = errors.New("invalid type")
	ErrInvalidTarget    = errors.New("target must be positive")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateName    = errors.New("name already exists")
	ErrNegativeBudgeted = errors.New("budgeted amount cannot be negative")
)

// ParseDate parses an ISO-8601 date or RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// Time returns the parsed transaction date. Unparseable dates map to the
// Unix epoch so comparisons stay total.
func (t Transaction) Time() time.Time {
	parsed, err := ParseDate(t.Date)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return parsed
}

func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }
func (t Transaction) IsIncome() bool  { return t.Amount.IsPositive() }

// HasTag reports whether tag is attached, ignoring case.
func (t Transaction) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with t.
func (t Transaction) Clone() Transaction {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

// Validate checks the fields an entry form requires.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if len(t.Merchant) > 200 {
		return ErrMerchantTooLong
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !t.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// ValidateEntry additionally enforces that the amount sign agrees with the
// declared kind. The data model itself does not enforce this.
func (t Transaction) ValidateEntry(kind Kind) error {
	if err := t.Validate(); err != nil {
		return err
	}
	switch kind {
	case IncomeKind:
		if !t.IsIncome() {
			return ErrSignMismatch
		}
	case ExpenseKind:
		if !t.IsExpense() {
			return ErrSignMismatch
		}
	case "":
	default:
		return ErrInvalidType
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Type {
	case Cash, Credit, Investment, Loan:
	default:
		return ErrInvalidType
	}
	return nil
}

// MaskAccountNumber keeps only the last four characters visible.
func MaskAccountNumber(n string) string {
	n = strings.TrimSpace(n)
	if n == "" || strings.HasPrefix(n, "****") {
		return n
	}
	if len(n) <= 4 {
		return "****" + n
	}
	return "****" + n[len(n)-4:]
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Target.IsPositive() {
		return ErrInvalidTarget
	}
	switch g.Type {
	case SavingsGoal, DebtGoal:
	default:
		return ErrInvalidType
	}
	return nil
}

func (b BudgetCategory) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Budgeted.IsNegative() {
		return ErrNegativeBudgeted
	}
	return nil
}

// Recompute restores Remaining = Budgeted - Spent.
func (b BudgetCategory) Recompute() BudgetCategory {
	b.Remaining = b.Budgeted.Sub(b.Spent)
	return b
}

// AddSpend adds amount to Spent and recomputes Remaining in the same step.
func (b BudgetCategory) AddSpend(amount decimal.Decimal) BudgetCategory {
	b.Spent = b.Spent.Add(amount)
	return b.Recompute()
}
