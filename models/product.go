package models

import (
	"time"
)

// Product 代表商品
//
// Products are supplied by the catalog source and are immutable from the
// storefront's point of view.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SalePrice   *float64  `json:"sale_price,omitempty"`
	Category    string    `json:"category"`
	Gender      string    `json:"gender"`
	Sizes       []string  `json:"sizes"`
	Colors      []Color   `json:"colors"`
	Images      []string  `json:"images"`
	IsNew       bool      `json:"is_new"`
	IsSale      bool      `json:"is_sale"`
	IsFeatured  bool      `json:"is_featured"`
	Stock       int       `json:"stock"`
	Popularity  float64   `json:"popularity,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Color is a named swatch attached to a product.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// EffectivePrice returns the sale price when present, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// HasSize reports whether the product is available in the given size.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// ProductPage is one page of catalog results together with the pagination
// metadata the storefront renders.
type ProductPage struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination 代表分頁資訊
type Pagination struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}
