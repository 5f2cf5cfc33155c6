package cart

import (
	"gofalre.io/storefront/models"
)

// Pricing rules applied to every cart.
const (
	freeShippingThreshold = 50.0
	flatShippingRate      = 5.99
	taxRate               = 0.08
)

// Totals computes the money summary from the current line items. Amounts
// accumulate unrounded; presentation rounding is Totals.Rounded's job.
//
// subtotal = Σ effective price × quantity
// shipping = 0 when subtotal > 50, 5.99 otherwise
// tax      = subtotal × 8%
// total    = subtotal + shipping + tax − discount
//
// The discount comes from the applied promotion, if any. An empty cart owes
// nothing.
func (s *Store) Totals() models.Totals {
	totals := models.Totals{Currency: s.currency}
	if len(s.items) == 0 {
		return totals
	}

	for _, item := range s.items {
		totals.Subtotal += item.Subtotal()
	}

	if totals.Subtotal > freeShippingThreshold {
		totals.Shipping = 0
	} else {
		totals.Shipping = flatShippingRate
	}

	totals.Tax = totals.Subtotal * taxRate

	if s.promo != nil {
		totals.Discount = s.promo.DiscountAmount
	}

	totals.Total = totals.Subtotal + totals.Shipping + totals.Tax - totals.Discount
	return totals
}
