package format

import (
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// Money renders amounts for display. Amounts are whole currency units, so
// no fraction digits are printed.
type Money struct {
	ac *accounting.Accounting
}

func NewMoney(symbol string) *Money {
	if strings.TrimSpace(symbol) == "" {
		symbol = "IQD "
	}
	return &Money{ac: &accounting.Accounting{
		Symbol:    symbol,
		Precision: 0,
		Thousand:  ",",
		Decimal:   ".",
	}}
}

func (m *Money) Format(amount decimal.Decimal) string {
	return m.ac.FormatMoneyDecimal(amount)
}
