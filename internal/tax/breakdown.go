// Package tax computes the net/VAT/total breakdown printed on invoices.
package tax

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeTotal rejects negative invoice totals.
	ErrNegativeTotal = errors.New("Total amount cannot be negative")
	// ErrInvalidVATRate rejects rates outside [0, 100].
	ErrInvalidVATRate = errors.New("VAT rate must be between 0 and 100")
)

// Breakdown is the net/tax/total decomposition of a tax-inclusive amount.
// Amounts are rounded to two decimals and satisfy
// NetAmount + TaxAmount == TotalAmount exactly.
type Breakdown struct {
	NetAmount   float64 `json:"amount"`
	TaxAmount   float64 `json:"tax_amount"`
	TotalAmount float64 `json:"total_amount"`
	VATRate     float64 `json:"vat_rate"`
}

// ComputeBreakdown splits a tax-inclusive total into net and VAT parts.
//
// The net amount is rounded to two decimals FIRST, then the tax amount is
// taken as the rounded total minus the rounded net. Rounding net and tax
// independently can drift one cent from the total; this ordering cannot.
func ComputeBreakdown(totalAmount, vatRate float64) (Breakdown, error) {
	if totalAmount < 0 {
		return Breakdown{}, ErrNegativeTotal
	}
	if vatRate < 0 || vatRate > 100 {
		return Breakdown{}, ErrInvalidVATRate
	}

	total := decimal.NewFromFloat(totalAmount).Round(2)
	rate := decimal.NewFromFloat(vatRate)

	divisor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	net := total.DivRound(divisor, 2)
	taxAmount := total.Sub(net)

	return Breakdown{
		NetAmount:   net.InexactFloat64(),
		TaxAmount:   taxAmount.InexactFloat64(),
		TotalAmount: total.InexactFloat64(),
		VATRate:     vatRate,
	}, nil
}
