package models

import (
	"gofalre.io/storefront/models/enum"
)

// FilterSpec 代表商品查詢條件
//
// Empty Category/Gender/Size match everything. PriceMax of +Inf or any value
// <= 0 means no upper bound.
type FilterSpec struct {
	Category string       `json:"category,omitempty"`
	Gender   string       `json:"gender,omitempty"`
	Size     string       `json:"size,omitempty"`
	PriceMin float64      `json:"price_min,omitempty"`
	PriceMax float64      `json:"price_max,omitempty"`
	Sort     enum.SortKey `json:"sort,omitempty"`
	Page     int          `json:"page,omitempty"`
	PageSize int          `json:"page_size,omitempty"`
}

// PromoResult is the outcome of evaluating a promotion code against the
// current cart subtotal.
type PromoResult struct {
	Valid          bool    `json:"valid"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discount_amount"`
	Message        string  `json:"message"`
}
