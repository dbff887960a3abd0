package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount the way the dashboards display money:
// Indian digit grouping with exactly two decimal places.
func FormatINR(amount float64) string {
	return inr.Sprintf("₹%v", number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
