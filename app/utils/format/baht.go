package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var thb = accounting.Accounting{Symbol: "฿", Precision: 2, Thousand: ",", Decimal: "."}

// Baht renders an amount for user-facing messages and receipts.
func Baht(amount decimal.Decimal) string {
	return thb.FormatMoneyDecimal(amount)
}
