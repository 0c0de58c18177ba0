package categorize

import "pennie/internal/core"

// Rule maps a normalized merchant key to a category.
type Rule struct {
	Key      string        `yaml:"merchant"`
	Category core.Category `yaml:"category"`
}

// Table order is significant: fuzzy matching returns the first rule whose key
// overlaps the input, so more specific keys must precede shorter ones
// (UBER EATS before UBER).
var builtinTable = []Rule{
	// Food & Dining
	{"STARBUCKS", core.FoodDining},
	{"MCDONALDS", core.FoodDining},
	{"MCDONALD'S", core.FoodDining},
	{"CHIPOTLE", core.FoodDining},
	{"SUBWAY", core.FoodDining},
	{"DUNKIN", core.FoodDining},
	{"TACO BELL", core.FoodDining},
	{"WENDYS", core.FoodDining},
	{"BURGER KING", core.FoodDining},
	{"CHICK-FIL-A", core.FoodDining},
	{"DOMINOS", core.FoodDining},
	{"PIZZA HUT", core.FoodDining},
	{"PANERA BREAD", core.FoodDining},
	{"PANDA EXPRESS", core.FoodDining},
	{"KFC", core.FoodDining},
	{"POPEYES", core.FoodDining},
	{"UBER EATS", core.FoodDining},
	{"DOORDASH", core.FoodDining},
	{"GRUBHUB", core.FoodDining},
	{"POSTMATES", core.FoodDining},
	{"WHOLE FOODS", core.FoodDining},
	{"TRADER JOES", core.FoodDining},
	{"TRADER JOE'S", core.FoodDining},
	{"KROGER", core.FoodDining},
	{"SAFEWAY", core.FoodDining},
	{"PUBLIX", core.FoodDining},
	{"ALDI", core.FoodDining},
	{"SPROUTS", core.FoodDining},
	{"INSTACART", core.FoodDining},

	// Auto & Transport
	{"UBER", core.AutoTransport},
	{"LYFT", core.AutoTransport},
	{"SHELL", core.AutoTransport},
	{"CHEVRON", core.AutoTransport},
	{"EXXON", core.AutoTransport},
	{"MOBIL", core.AutoTransport},
	{"TEXACO", core.AutoTransport},
	{"SUNOCO", core.AutoTransport},
	{"VALERO", core.AutoTransport},
	{"CITGO", core.AutoTransport},
	{"JIFFY LUBE", core.AutoTransport},
	{"AUTOZONE", core.AutoTransport},
	{"TESLA SUPERCHARGER", core.AutoTransport},
	{"DMV", core.AutoTransport},

	// Shopping
	{"AMAZON", core.Shopping},
	{"WALMART", core.Shopping},
	{"TARGET", core.Shopping},
	{"COSTCO", core.Shopping},
	{"BEST BUY", core.Shopping},
	{"HOME DEPOT", core.Shopping},
	{"LOWES", core.Shopping},
	{"IKEA", core.Shopping},
	{"MACYS", core.Shopping},
	{"NORDSTROM", core.Shopping},
	{"KOHLS", core.Shopping},
	{"TJ MAXX", core.Shopping},
	{"MARSHALLS", core.Shopping},
	{"ETSY", core.Shopping},
	{"EBAY", core.Shopping},
	{"APPLE STORE", core.Shopping},
	{"NIKE", core.Shopping},
	{"ZARA", core.Shopping},

	// Bills & Utilities
	{"VERIZON", core.BillsUtilities},
	{"AT&T", core.BillsUtilities},
	{"T-MOBILE", core.BillsUtilities},
	{"COMCAST", core.BillsUtilities},
	{"XFINITY", core.BillsUtilities},
	{"SPECTRUM", core.BillsUtilities},
	{"PG&E", core.BillsUtilities},
	{"CON EDISON", core.BillsUtilities},
	{"DUKE ENERGY", core.BillsUtilities},
	{"GEICO", core.BillsUtilities},
	{"STATE FARM", core.BillsUtilities},
	{"PROGRESSIVE", core.BillsUtilities},
	{"ALLSTATE", core.BillsUtilities},

	// Entertainment
	{"NETFLIX", core.Entertainment},
	{"SPOTIFY", core.Entertainment},
	{"HULU", core.Entertainment},
	{"DISNEY PLUS", core.Entertainment},
	{"DISNEY+", core.Entertainment},
	{"HBO MAX", core.Entertainment},
	{"YOUTUBE PREMIUM", core.Entertainment},
	{"APPLE MUSIC", core.Entertainment},
	{"AMC THEATRES", core.Entertainment},
	{"REGAL CINEMAS", core.Entertainment},
	{"STEAM GAMES", core.Entertainment},
	{"PLAYSTATION", core.Entertainment},
	{"XBOX", core.Entertainment},
	{"NINTENDO", core.Entertainment},
	{"TICKETMASTER", core.Entertainment},
	{"PLANET FITNESS", core.Entertainment},
	{"EQUINOX", core.Entertainment},
	{"PELOTON", core.Entertainment},

	// Healthcare
	{"CVS", core.Healthcare},
	{"WALGREENS", core.Healthcare},
	{"RITE AID", core.Healthcare},
	{"KAISER", core.Healthcare},
	{"QUEST DIAGNOSTICS", core.Healthcare},
	{"LABCORP", core.Healthcare},
	{"ONE MEDICAL", core.Healthcare},

	// Education
	{"COURSERA", core.Education},
	{"UDEMY", core.Education},
	{"CHEGG", core.Education},
	{"DUOLINGO", core.Education},
	{"MASTERCLASS", core.Education},
	{"PEARSON", core.Education},
	{"BARNES & NOBLE", core.Education},

	// Travel
	{"DELTA AIR", core.Travel},
	{"UNITED AIRLINES", core.Travel},
	{"AMERICAN AIRLINES", core.Travel},
	{"SOUTHWEST", core.Travel},
	{"JETBLUE", core.Travel},
	{"ALASKA AIR", core.Travel},
	{"AIRBNB", core.Travel},
	{"MARRIOTT", core.Travel},
	{"HILTON", core.Travel},
	{"HYATT", core.Travel},
	{"EXPEDIA", core.Travel},
	{"BOOKING.COM", core.Travel},
	{"HOTELS.COM", core.Travel},
	{"AMTRAK", core.Travel},
	{"HERTZ", core.Travel},

	// Personal Care
	{"SEPHORA", core.PersonalCare},
	{"ULTA", core.PersonalCare},
	{"GREAT CLIPS", core.PersonalCare},
	{"SUPERCUTS", core.PersonalCare},
	{"BATH & BODY WORKS", core.PersonalCare},

	// Gifts & Donations
	{"RED CROSS", core.GiftsDonations},
	{"UNICEF", core.GiftsDonations},
	{"GOFUNDME", core.GiftsDonations},
	{"SALVATION ARMY", core.GiftsDonations},
	{"WIKIMEDIA", core.GiftsDonations},
	{"PATREON", core.GiftsDonations},

	// Business
	{"ADOBE", core.Business},
	{"MICROSOFT", core.Business},
	{"GOOGLE WORKSPACE", core.Business},
	{"SLACK", core.Business},
	{"ZOOM.US", core.Business},
	{"DROPBOX", core.Business},
	{"GITHUB", core.Business},
	{"ATLASSIAN", core.Business},
	{"MAILCHIMP", core.Business},
	{"QUICKBOOKS", core.Business},
	{"FEDEX", core.Business},

	// Taxes
	{"IRS TREAS", core.Taxes},
	{"US TREASURY", core.Taxes},
	{"FRANCHISE TAX BOARD", core.Taxes},
	{"TURBOTAX", core.Taxes},
	{"H&R BLOCK", core.Taxes},

	// Income
	{"GUSTO", core.Income},
	{"ADP PAYROLL", core.Income},
	{"PAYCHEX", core.Income},
}
