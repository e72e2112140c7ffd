package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`\d+\.?\d*`)

// priceTextCleaner drops the euro sign (also in its common mis-decoded form)
// and spaces, and turns decimal commas into points.
var priceTextCleaner = strings.NewReplacer(
	"€", "",
	"\u201a\u00c7\u00a8", "",
	",", ".",
	" ", "",
	"\u00a0", "",
)

// ParsePriceText extracts the first number from scraped price text.
// "45,99€" yields 45.99; text without digits yields false.
// Thousands separators are not understood: "1.234,56 €" cleans to "1.234.56" and yields 1.234.
func ParsePriceText(text string) (decimal.Decimal, bool) {
	cleaned := priceTextCleaner.Replace(strings.TrimSpace(text))

	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(match, "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
