package categorize

import (
	"strings"

	"pennie/internal/core"
)

// keywordGroup is tested against the lowercased merchant. Suffix groups only
// match the final word (corporate entity markers).
type keywordGroup struct {
	category core.Category
	keywords []string
	suffix   bool
}

// Groups are tested in order; the first group with any hit wins.
var keywordGroups = []keywordGroup{
	{core.BillsUtilities, []string{"bank fee", "atm withdrawal", "atm fee", "overdraft", "service charge", "wire transfer", "transfer", "payment", "autopay", "late fee"}, false},
	{core.Income, []string{"deposit", "payroll", "salary", "paycheck", "interest", "dividend", "refund", "reimbursement", "direct dep"}, false},
	{core.FoodDining, []string{"restaurant", "cafe", "coffee", "pizza", "burger", "grill", "diner", "bakery", "sushi", "taco", "grocery", "supermarket", "market", "deli", "bistro", "kitchen", "food", "eatery"}, false},
	{core.AutoTransport, []string{"gas station", "gasoline", "fuel", "parking", "toll", "auto", "car wash", "transit", "metro", "taxi", "mechanic", "tire", "oil change"}, false},
	{core.Shopping, []string{"store", "shop", "mall", "outlet", "boutique", "retail", "mart", "depot", "supply"}, false},
	{core.Entertainment, []string{"gym", "fitness", "yoga", "cinema", "theater", "theatre", "movie", "concert", "music", "game", "bowling", "sports"}, false},
	{core.Travel, []string{"airline", "airways", "hotel", "motel", "resort", "flight", "airport", "travel", "cruise", "hostel"}, false},
	{core.BillsUtilities, []string{"electric", "power", "water", "utility", "utilities", "internet", "phone", "wireless", "cable", "energy"}, false},
	{core.Healthcare, []string{"pharmacy", "medical", "doctor", "dental", "dentist", "clinic", "hospital", "health", "urgent care", "optometr"}, false},
	{core.Business, []string{"llc", "inc", "corp", "corporation", "ltd", "co", "gmbh", "plc", "llp"}, true},
}

func matchKeywords(lower string) (core.Category, bool) {
	last := lastWord(lower)
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if g.suffix {
				if last == kw {
					return g.category, true
				}
				continue
			}
			if strings.Contains(lower, kw) {
				return g.category, true
			}
		}
	}
	return core.Other, false
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,")
}
