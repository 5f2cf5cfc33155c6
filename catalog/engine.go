// Package catalog provides the product catalog: a pure client-side
// filter/sort/pagination engine and a Postgres-backed repository for
// server-side queries.
package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// DefaultPageSize matches the catalog endpoint's default limit.
const DefaultPageSize = 12

// Result is the visible slice of the catalog for one FilterSpec.
type Result struct {
	Visible      []*models.Product
	TotalMatched int
	TotalPages   int
}

// Apply filters, sorts and paginates the full product list. It is
// deterministic: the sort is stable, so products with equal sort keys keep
// their input order and pagination is reproducible across calls.
//
// A page beyond the last one yields an empty Visible list, not an error.
func Apply(products []*models.Product, spec models.FilterSpec) Result {
	page := spec.Page
	if page < 1 {
		page = 1
	}
	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if matches(p, spec) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, spec.Sort)

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Result{
		Visible:      filtered[start:end],
		TotalMatched: total,
		TotalPages:   totalPages,
	}
}

func matches(p *models.Product, spec models.FilterSpec) bool {
	if spec.Category != "" && p.Category != spec.Category {
		return false
	}
	if spec.Gender != "" && p.Gender != spec.Gender {
		return false
	}
	if spec.Size != "" && !p.HasSize(spec.Size) {
		return false
	}
	if p.Price < spec.PriceMin {
		return false
	}
	// PriceMax <= 0 or +Inf means no upper bound.
	if spec.PriceMax > 0 && !math.IsInf(spec.PriceMax, 1) && p.Price > spec.PriceMax {
		return false
	}
	return true
}

func sortProducts(products []*models.Product, key enum.SortKey) {
	switch key {
	case enum.SortKeyPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case enum.SortKeyPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case enum.SortKeyNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case enum.SortKeyPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Popularity > products[j].Popularity
		})
	default:
		// featured first, ties broken by ascending id
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].IsFeatured != products[j].IsFeatured {
				return products[i].IsFeatured
			}
			return lessID(products[i].ID, products[j].ID)
		})
	}
}

// lessID orders ids numerically when both parse as integers, which the
// catalog's ids do, and lexicographically otherwise.
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// ParsePriceRange parses the filter widget's "min-max" token, where a "+"
// max means unbounded, e.g. "50-+". Anything unparseable leaves that bound
// open.
func ParsePriceRange(s string) (min, max float64) {
	max = math.Inf(1)
	parts := strings.SplitN(s, "-", 2)

	if len(parts) > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
			min = v
		}
	}
	if len(parts) == 2 {
		raw := strings.TrimSpace(parts[1])
		if raw != "+" && raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				max = v
			}
		}
	}
	return min, max
}
