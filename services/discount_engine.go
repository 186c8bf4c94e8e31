package services

import (
	"time"

	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
)

// VATRate is the flat inclusive VAT rate. Prices already contain tax; the
// tax portion is extracted by division, never added on top.
const VATRate = 0.07

// PricingLine is one cart or order line fed into the engine.
type PricingLine struct {
	Quantity  int
	UnitPrice float64
	Modifiers []models.ItemModifier
	Discount  *models.Discount
}

// PricedLine is the engine's per-line output.
type PricedLine struct {
	Base           float64
	DiscountAmount float64
	TotalPrice     float64
}

// CartTotals is the engine's receipt-level output. Subtotal is the sum of
// item-discounted line totals; TotalAmount is Subtotal minus the receipt
// discount, with VAT extracted from it (inclusive pricing).
type CartTotals struct {
	Lines                 []PricedLine
	Subtotal              float64
	ReceiptDiscountAmount float64
	VatAmount             float64
	TotalAmount           float64
}

// DiscountAvailable checks whether a discount may be applied at the given
// moment. Inactive or out-of-window discounts must fail loudly, never be
// silently skipped.
func DiscountAvailable(d *models.Discount, now time.Time) bool {
	if d == nil {
		return false
	}
	if !d.IsActive {
		return false
	}
	switch d.Availability {
	case models.DiscountAvailabilityAlways:
		return true
	case models.DiscountAvailabilityDateRange:
		if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
			return false
		}
		if d.ValidUntil != nil && now.After(*d.ValidUntil) {
			return false
		}
		return true
	default:
		return false
	}
}

// DiscountAmount computes the amount a rule takes off the given base. The
// result is clamped so a discount can never drive the base negative.
func DiscountAmount(d *models.Discount, base float64) (float64, error) {
	if d.Value < 0 {
		return 0, utils.ErrValidation("discount value cannot be negative")
	}
	switch d.Type {
	case models.DiscountTypePercentage:
		if d.Value > 100 {
			return 0, utils.ErrValidation("percentage discount cannot exceed 100%")
		}
		return utils.Round2(base * d.Value / 100), nil
	case models.DiscountTypeFixed:
		if d.Value > base {
			return base, nil
		}
		return utils.Round2(d.Value), nil
	default:
		return 0, utils.ErrValidation("unknown discount type: " + d.Type)
	}
}

// PriceLines runs the full pricing pass: item discounts per line, then the
// receipt discount against the sum of discounted line totals, then VAT
// extraction. Pure calculation, no I/O.
func PriceLines(lines []PricingLine, receiptDiscount *models.Discount, now time.Time) (CartTotals, error) {
	totals := CartTotals{Lines: make([]PricedLine, 0, len(lines))}

	for _, line := range lines {
		base := float64(line.Quantity) * line.UnitPrice
		for _, mod := range line.Modifiers {
			base += mod.PriceDelta
		}
		base = utils.Round2(base)
		if base < 0 {
			return CartTotals{}, utils.ErrValidation("line total cannot be negative")
		}

		priced := PricedLine{Base: base}
		if line.Discount != nil {
			if line.Discount.Scope != models.DiscountScopeItem {
				return CartTotals{}, utils.ErrValidation("receipt-scope discount applied to an item")
			}
			if !DiscountAvailable(line.Discount, now) {
				return CartTotals{}, utils.ErrDiscountUnavailable(line.Discount.ID)
			}
			amount, err := DiscountAmount(line.Discount, base)
			if err != nil {
				return CartTotals{}, err
			}
			priced.DiscountAmount = amount
		}
		priced.TotalPrice = utils.Round2(base - priced.DiscountAmount)

		totals.Lines = append(totals.Lines, priced)
		totals.Subtotal = utils.Round2(totals.Subtotal + priced.TotalPrice)
	}

	receiptTotals, err := ReceiptTotals(totals.Subtotal, receiptDiscount, now)
	if err != nil {
		return CartTotals{}, err
	}
	totals.ReceiptDiscountAmount = receiptTotals.ReceiptDiscountAmount
	totals.VatAmount = receiptTotals.VatAmount
	totals.TotalAmount = receiptTotals.TotalAmount
	return totals, nil
}

// ReceiptTotals runs the receipt-level pass over an already item-discounted
// subtotal: receipt discount first, then VAT extraction from the result.
func ReceiptTotals(subtotal float64, receiptDiscount *models.Discount, now time.Time) (CartTotals, error) {
	totals := CartTotals{Subtotal: utils.Round2(subtotal)}

	if receiptDiscount != nil {
		if receiptDiscount.Scope != models.DiscountScopeReceipt {
			return CartTotals{}, utils.ErrValidation("item-scope discount applied to the receipt")
		}
		if !DiscountAvailable(receiptDiscount, now) {
			return CartTotals{}, utils.ErrDiscountUnavailable(receiptDiscount.ID)
		}
		amount, err := DiscountAmount(receiptDiscount, totals.Subtotal)
		if err != nil {
			return CartTotals{}, err
		}
		totals.ReceiptDiscountAmount = amount
	}

	totals.TotalAmount = utils.Round2(totals.Subtotal - totals.ReceiptDiscountAmount)
	totals.VatAmount = utils.Round2(totals.TotalAmount * VATRate / (1 + VATRate))
	return totals, nil
}

// LinesFromCart converts a session's cart items into pricing lines,
// resolving each item discount through the given lookup.
func LinesFromCart(items []models.CartItem, lookup func(uint) (*models.Discount, error)) ([]PricingLine, error) {
	lines := make([]PricingLine, 0, len(items))
	for _, item := range items {
		line := PricingLine{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Modifiers: item.Modifiers,
		}
		if item.DiscountID != nil {
			discount, err := lookup(*item.DiscountID)
			if err != nil {
				return nil, err
			}
			line.Discount = discount
		}
		lines = append(lines, line)
	}
	return lines, nil
}
