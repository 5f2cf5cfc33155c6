// Package promo validates promotion codes against the storefront's rule
// table and computes the resulting discount.
package promo

import (
	"strings"

	"gofalre.io/storefront/models"
)

// rule maps a code to a fractional discount rate.
type rule struct {
	rate    float64
	message string
}

// Codes are matched case-insensitively after trimming.
var rules = map[string]rule{
	"VELVET20": {rate: 0.20, message: "Promo code applied: 20% off"},
}

// Evaluate checks the code against the rule table and computes the discount
// for the given subtotal. It is stateless: remembering that a discount is
// active is the cart store's job.
func Evaluate(code string, subtotal float64) models.PromoResult {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.PromoResult{
			Code:    trimmed,
			Message: "Please enter a promo code",
		}
	}

	r, ok := rules[strings.ToUpper(trimmed)]
	if !ok {
		return models.PromoResult{
			Code:    trimmed,
			Message: "Invalid promo code",
		}
	}

	return models.PromoResult{
		Valid:          true,
		Code:           trimmed,
		DiscountAmount: models.Round2(subtotal * r.rate),
		Message:        r.message,
	}
}
