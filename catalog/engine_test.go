package catalog

import (
	"math"
	"testing"
	"time"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

func testProducts() []*models.Product {
	sale := 15.0
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	return []*models.Product{
		{ID: "1", Name: "Tee", Category: "tops", Gender: "men", Sizes: []string{"S", "M"},
			Price: 20, Popularity: 3, CreatedAt: base},
		{ID: "2", Name: "Hoodie", Category: "tops", Gender: "women", Sizes: []string{"M", "L"},
			Price: 60, Popularity: 9, IsFeatured: true, CreatedAt: base.AddDate(0, 1, 0)},
		{ID: "10", Name: "Jeans", Category: "bottoms", Gender: "men", Sizes: []string{"M"},
			Price: 80, SalePrice: &sale, Popularity: 7, IsFeatured: true, CreatedAt: base.AddDate(0, 2, 0)},
		{ID: "3", Name: "Socks", Category: "accessories", Gender: "unisex", Sizes: []string{"M"},
			Price: 8, Popularity: 5, CreatedAt: base.AddDate(0, 3, 0)},
	}
}

func ids(products []*models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyFilters(t *testing.T) {
	products := testProducts()

	tests := []struct {
		name string
		spec models.FilterSpec
		want []string
	}{
		{"no filters matches all", models.FilterSpec{}, []string{"2", "10", "1", "3"}},
		{"by category", models.FilterSpec{Category: "tops"}, []string{"2", "1"}},
		{"by gender", models.FilterSpec{Gender: "men"}, []string{"10", "1"}},
		{"by size", models.FilterSpec{Size: "L"}, []string{"2"}},
		{"price uses list price not sale price", models.FilterSpec{PriceMin: 70}, []string{"10"}},
		{"price upper bound", models.FilterSpec{PriceMax: 25}, []string{"1", "3"}},
		{"price band", models.FilterSpec{PriceMin: 10, PriceMax: 65}, []string{"2", "1"}},
		{"combined", models.FilterSpec{Category: "tops", Gender: "women"}, []string{"2"}},
		{"nothing matches", models.FilterSpec{Category: "shoes"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(products, tt.spec).Visible)
			if !equalIDs(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplySorting(t *testing.T) {
	products := testProducts()

	tests := []struct {
		name string
		sort enum.SortKey
		want []string
	}{
		// featured first, then ascending numeric id
		{"featured default", enum.SortKeyFeatured, []string{"2", "10", "1", "3"}},
		// jeans sort by sale price 15
		{"price low to high", enum.SortKeyPriceLow, []string{"3", "10", "1", "2"}},
		{"price high to low", enum.SortKeyPriceHigh, []string{"2", "1", "10", "3"}},
		{"newest", enum.SortKeyNewest, []string{"3", "10", "2", "1"}},
		{"popular", enum.SortKeyPopular, []string{"2", "10", "3", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(products, models.FilterSpec{Sort: tt.sort}).Visible)
			if !equalIDs(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplySortIsStable(t *testing.T) {
	products := []*models.Product{
		{ID: "a", Price: 10, Popularity: 5},
		{ID: "b", Price: 10, Popularity: 5},
		{ID: "c", Price: 10, Popularity: 5},
	}

	got := ids(Apply(products, models.FilterSpec{Sort: enum.SortKeyPriceLow}).Visible)
	if !equalIDs(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected input order preserved for equal keys, got %v", got)
	}
}

func TestApplyPagination(t *testing.T) {
	var products []*models.Product
	for i := 1; i <= 30; i++ {
		products = append(products, &models.Product{ID: string(rune('a' + i - 1))})
	}

	t.Run("defaults", func(t *testing.T) {
		res := Apply(products, models.FilterSpec{})
		if len(res.Visible) != DefaultPageSize {
			t.Fatalf("expected default page of %d, got %d", DefaultPageSize, len(res.Visible))
		}
		if res.TotalMatched != 30 || res.TotalPages != 3 {
			t.Fatalf("expected 30 matched over 3 pages, got %d/%d", res.TotalMatched, res.TotalPages)
		}
	})

	t.Run("pages concatenate to the full set", func(t *testing.T) {
		var all []string
		for page := 1; page <= 4; page++ {
			res := Apply(products, models.FilterSpec{Page: page, PageSize: 9})
			all = append(all, ids(res.Visible)...)
		}
		if len(all) != 30 {
			t.Fatalf("expected 30 products across pages, got %d", len(all))
		}
		if !equalIDs(all, ids(products)) {
			t.Fatal("expected pages to concatenate to the input order")
		}
	})

	t.Run("page beyond last is empty", func(t *testing.T) {
		res := Apply(products, models.FilterSpec{Page: 99, PageSize: 9})
		if len(res.Visible) != 0 {
			t.Fatalf("expected empty page, got %d items", len(res.Visible))
		}
		if res.TotalMatched != 30 {
			t.Fatalf("expected total 30 regardless of page, got %d", res.TotalMatched)
		}
	})

	t.Run("invalid page and size normalize", func(t *testing.T) {
		res := Apply(products, models.FilterSpec{Page: -2, PageSize: 0})
		if len(res.Visible) != DefaultPageSize {
			t.Fatalf("expected first default page, got %d items", len(res.Visible))
		}
		if res.Visible[0].ID != "a" {
			t.Fatalf("expected page 1, got first id %q", res.Visible[0].ID)
		}
	})
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		in      string
		wantMin float64
		wantMax float64
	}{
		{"0-25", 0, 25},
		{"25-50", 25, 50},
		{"50-+", 50, math.Inf(1)},
		{"50-", 50, math.Inf(1)},
		{"garbage", 0, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			min, max := ParsePriceRange(tt.in)
			if min != tt.wantMin {
				t.Fatalf("min: expected %v, got %v", tt.wantMin, min)
			}
			if max != tt.wantMax && !(math.IsInf(tt.wantMax, 1) && math.IsInf(max, 1)) {
				t.Fatalf("max: expected %v, got %v", tt.wantMax, max)
			}
		})
	}
}
