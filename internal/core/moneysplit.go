package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MarginRate is the fixed share each company in the chain retains per hop.
var MarginRate = decimal.NewFromFloat(0.20)

// Split is the outcome of dividing a customer total at one hop.
type Split struct {
	VendorAmount decimal.Decimal `json:"vendor_amount"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
}

// SplitTotal divides total into the vendor payout (80%) and the retained
// margin (20%), each rounded half-up to two decimal places independently.
// The rounding residue therefore lands on the margin side: 99.99 splits into
// 79.99 / 20.00. The PO ledger stores margin as the exact complement instead,
// so persisted books always balance; this function drives the initial payout.
func SplitTotal(total decimal.Decimal) (Split, error) {
	if total.IsNegative() {
		return Split{}, fmt.Errorf("split total cannot be negative, got %s", total)
	}
	vendorRate := decimal.NewFromInt(1).Sub(MarginRate)
	return Split{
		VendorAmount: total.Mul(vendorRate).Round(2),
		MarginAmount: total.Mul(MarginRate).Round(2),
	}, nil
}
