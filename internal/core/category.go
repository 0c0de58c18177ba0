package core

import "strings"

// Category is one of the closed set of labels classifying a transaction.
type Category string

const (
	FoodDining     Category = "Food & Dining"
	AutoTransport  Category = "Auto & Transport"
	Shopping       Category = "Shopping"
	BillsUtilities Category = "Bills & Utilities"
	Income         Category = "Income"
	Entertainment  Category = "Entertainment"
	Healthcare     Category = "Healthcare"
	Education      Category = "Education"
	Travel         Category = "Travel"
	PersonalCare   Category = "Personal Care"
	GiftsDonations Category = "Gifts & Donations"
	Business       Category = "Business"
	Taxes          Category = "Taxes"
	Other          Category = "Other"
)

var categories = []Category{
	FoodDining,
	AutoTransport,
	Shopping,
	BillsUtilities,
	Income,
	Entertainment,
	Healthcare,
	Education,
	Travel,
	PersonalCare,
	GiftsDonations,
	Business,
	Taxes,
	Other,
}

// Categories returns every category in taxonomy order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Valid reports whether c is a member of the taxonomy.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s case-insensitively against the taxonomy.
// Unknown or empty input yields Other and false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Other, false
	}
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return Other, false
}
