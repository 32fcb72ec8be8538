package calculator

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.TraditionalChinese)

// FormatAmount rounds to whole dollars and groups thousands ("1,234,568").
func FormatAmount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent renders a yield as "6.25%", or the placeholder when nil.
func FormatPercent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprintf("%.2f%%", *v)
}

// Display is the human-readable form of a Summary
type Display struct {
	DividendPayout string `json:"dividend_payout"`
	MarketValue    string `json:"market_value"`
	YieldPercent   string `json:"yield_percent"`
}

// Display formats the summary for presentation.
func (s Summary) Display() Display {
	return Display{
		DividendPayout: FormatAmount(s.DividendPayout),
		MarketValue:    FormatAmount(s.MarketValue),
		YieldPercent:   FormatPercent(s.YieldPercent),
	}
}
