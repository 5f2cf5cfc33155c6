package enum

// SortKey 表示商品列表的排序方式
type SortKey string

const (
	SortKeyFeatured  SortKey = "featured"
	SortKeyPriceLow  SortKey = "price-low"
	SortKeyPriceHigh SortKey = "price-high"
	SortKeyNewest    SortKey = "newest"
	SortKeyPopular   SortKey = "popular"
)

// ParseSortKey maps a raw query value to a SortKey, falling back to featured.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortKeyPriceLow, SortKeyPriceHigh, SortKeyNewest, SortKeyPopular:
		return SortKey(s)
	default:
		return SortKeyFeatured
	}
}
