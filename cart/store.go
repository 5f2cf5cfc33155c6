// Package cart implements the persisted shopping cart: line items keyed by
// product variant, quantity bounds, derived totals and an applied promotion.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Quantity bounds for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// record is the persisted shape of the cart. The applied promotion is stored
// alongside the items so a discount survives reloads until the cart is
// cleared or becomes empty.
type record struct {
	Items []models.LineItem   `json:"items"`
	Promo *models.PromoResult `json:"applied_promo,omitempty"`
}

// Store owns the cart persisted under a single key. An empty cart and an
// absent record are the same state: emptying the cart removes the record,
// and a missing or unreadable record loads as an empty cart.
//
// A Store is bound to one session's key and is not safe for concurrent use;
// callers construct one per request over a shared adapter.
type Store struct {
	adapter  storage.Adapter
	key      string
	currency stripe.Currency
	logger   *zap.Logger

	items []models.LineItem
	promo *models.PromoResult
}

func NewStore(adapter storage.Adapter, key string, logger *zap.Logger) *Store {
	return &Store{
		adapter:  adapter,
		key:      key,
		currency: stripe.CurrencyUSD,
		logger:   logger,
	}
}

// Load reads the persisted record. Missing, unreadable or malformed data
// loads as an empty cart; Load never fails.
func (s *Store) Load(ctx context.Context) *models.Cart {
	var rec record

	found, err := s.adapter.Read(ctx, s.key, &rec)
	if err != nil {
		s.logger.Warn("Failed to read cart, treating as empty",
			zap.String("key", s.key), zap.Error(err))
	}

	if err != nil || !found {
		s.items = nil
		s.promo = nil
		return s.Snapshot()
	}

	s.items = rec.Items
	s.promo = rec.Promo
	return s.Snapshot()
}

// AddItem merges the variant into the cart: an identity-matching line item
// has its quantity incremented, otherwise a new line item is appended. The
// resulting quantity is clamped to [MinQuantity, MaxQuantity].
func (s *Store) AddItem(ctx context.Context, ref models.ProductRef, quantity int) (*models.Cart, error) {
	if quantity < MinQuantity {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidQuantity, quantity)
	}

	key := ref.Key()
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity = clampQuantity(s.items[i].Quantity + quantity)
	} else {
		s.items = append(s.items, models.LineItem{
			ProductRef: ref,
			Quantity:   clampQuantity(quantity),
		})
	}

	s.persist(ctx)
	return s.Snapshot(), nil
}

// SetQuantity sets the line item's quantity, clamped to the allowed range.
// It fails with ErrItemNotFound when the key is absent.
func (s *Store) SetQuantity(ctx context.Context, itemKey string, quantity int) (*models.Cart, error) {
	i := s.indexOf(itemKey)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", itemKey, ErrItemNotFound)
	}

	s.items[i].Quantity = clampQuantity(quantity)
	s.persist(ctx)
	return s.Snapshot(), nil
}

// ChangeQuantity adds delta to the line item's quantity and clamps the
// result; the quantity never leaves [MinQuantity, MaxQuantity] regardless of
// the delta's magnitude. An absent key is a no-op.
func (s *Store) ChangeQuantity(ctx context.Context, itemKey string, delta int) (*models.Cart, error) {
	i := s.indexOf(itemKey)
	if i < 0 {
		return s.Snapshot(), nil
	}

	s.items[i].Quantity = clampQuantity(s.items[i].Quantity + delta)
	s.persist(ctx)
	return s.Snapshot(), nil
}

// RemoveItem deletes the line item. Removing an absent key is a no-op, and
// removing the last item persists the cart as absent.
func (s *Store) RemoveItem(ctx context.Context, itemKey string) (*models.Cart, error) {
	i := s.indexOf(itemKey)
	if i < 0 {
		return s.Snapshot(), nil
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)
	return s.Snapshot(), nil
}

// Clear drops all line items and the applied promotion and removes the
// persisted record. Clearing an already empty cart is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	s.promo = nil

	if err := s.adapter.Remove(ctx, s.key); err != nil {
		s.logger.Warn("Failed to remove cart record",
			zap.String("key", s.key), zap.Error(err))
	}
	return nil
}

// ApplyPromo records a valid promotion result so later totals include its
// discount. Invalid results are ignored.
func (s *Store) ApplyPromo(ctx context.Context, result models.PromoResult) {
	if !result.Valid {
		return
	}

	promo := result
	s.promo = &promo
	s.persist(ctx)
}

// Promo returns the currently applied promotion, or nil.
func (s *Store) Promo() *models.PromoResult {
	if s.promo == nil {
		return nil
	}
	promo := *s.promo
	return &promo
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.LineItem {
	items := make([]models.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Count is the total quantity across all line items.
func (s *Store) Count() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Snapshot returns the cart as callers render it.
func (s *Store) Snapshot() *models.Cart {
	return &models.Cart{
		Items:     s.Items(),
		ItemCount: s.Count(),
		Totals:    s.Totals(),
	}
}

func (s *Store) indexOf(itemKey string) int {
	for i, item := range s.items {
		if item.Key() == itemKey {
			return i
		}
	}
	return -1
}

// persist writes the current state. An empty cart is persisted as an absent
// record. Storage failures are non-fatal: the mutation stands in memory and
// a warning is logged.
func (s *Store) persist(ctx context.Context) {
	if len(s.items) == 0 {
		s.promo = nil
		if err := s.adapter.Remove(ctx, s.key); err != nil {
			s.logger.Warn("Failed to remove empty cart record",
				zap.String("key", s.key), zap.Error(err))
		}
		return
	}

	rec := record{Items: s.items, Promo: s.promo}
	if err := s.adapter.Write(ctx, s.key, rec); err != nil {
		s.logger.Warn("Failed to persist cart, continuing in memory",
			zap.String("key", s.key), zap.Error(err))
	}
}

func clampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
