package models

import (
	"math"

	"github.com/stripe/stripe-go/v79"
)

// ProductRef identifies one purchasable variant of a product. Two refs with
// the same ID, Size and Color are the same line item.
type ProductRef struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	UnitPrice float64  `json:"price"`
	SalePrice *float64 `json:"sale_price,omitempty"`
	Image     string   `json:"image,omitempty"`
	Size      string   `json:"size,omitempty"`
	Color     string   `json:"color,omitempty"`
}

// Key returns the composite identity key of the variant: the product id with
// size and color suffixes when set.
func (r ProductRef) Key() string {
	key := r.ID
	if r.Size != "" {
		key += "_" + r.Size
	}
	if r.Color != "" {
		key += "_" + r.Color
	}
	return key
}

// EffectivePrice returns the sale price when present, the unit price otherwise.
func (r ProductRef) EffectivePrice() float64 {
	if r.SalePrice != nil {
		return *r.SalePrice
	}
	return r.UnitPrice
}

// LineItem 代表購物車中的單個商品項目
type LineItem struct {
	ProductRef
	Quantity int `json:"quantity"`
}

// Subtotal is the effective price times the quantity, unrounded.
func (li LineItem) Subtotal() float64 {
	return li.EffectivePrice() * float64(li.Quantity)
}

// Cart is a point-in-time snapshot of the cart returned by store operations.
type Cart struct {
	Items     []LineItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Totals    Totals     `json:"totals"`
}

// Totals 代表購物車金額明細
//
// All fields are unrounded accumulations; call Rounded before rendering.
type Totals struct {
	Currency stripe.Currency `json:"currency"`
	Subtotal float64         `json:"subtotal"`
	Shipping float64         `json:"shipping"`
	Tax      float64         `json:"tax"`
	Discount float64         `json:"discount"`
	Total    float64         `json:"total"`
}

// Rounded returns a copy with every amount rounded to two decimal places.
// Rounding happens only here, at the presentation boundary.
func (t Totals) Rounded() Totals {
	t.Subtotal = Round2(t.Subtotal)
	t.Shipping = Round2(t.Shipping)
	t.Tax = Round2(t.Tax)
	t.Discount = Round2(t.Discount)
	t.Total = Round2(t.Total)
	return t
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
