// internal/pkg/currency/peso.go
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var philippineEnglish = language.MustParse("en-PH")

// FormatPeso renders an amount the way the app displays prices, e.g. ₱1,234.5
func FormatPeso(amount decimal.Decimal) string {
	p := message.NewPrinter(philippineEnglish)
	return p.Sprintf("₱%v", number.Decimal(amount.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}
