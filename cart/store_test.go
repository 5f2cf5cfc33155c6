package cart

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryAdapter) {
	t.Helper()
	adapter := storage.NewMemoryAdapter()
	store := NewStore(adapter, "cart:test", zap.NewNop())
	store.Load(context.Background())
	return store, adapter
}

func ref(id, size, color string, price float64) models.ProductRef {
	return models.ProductRef{ID: id, Name: "Product " + id, UnitPrice: price, Size: size, Color: color}
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects quantity below minimum", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.AddItem(ctx, ref("1", "", "", 10), 0); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if _, err := store.AddItem(ctx, ref("1", "", "", 10), -3); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if store.Count() != 0 {
			t.Fatalf("expected empty cart after rejected adds, got count %d", store.Count())
		}
	})

	t.Run("merges identical variants", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.AddItem(ctx, ref("1", "M", "Black", 10), 2); err != nil {
			t.Fatal(err)
		}
		if _, err := store.AddItem(ctx, ref("1", "M", "Black", 10), 3); err != nil {
			t.Fatal(err)
		}

		items := store.Items()
		if len(items) != 1 {
			t.Fatalf("expected 1 line item, got %d", len(items))
		}
		if items[0].Quantity != 5 {
			t.Fatalf("expected merged quantity 5, got %d", items[0].Quantity)
		}
	})

	t.Run("distinguishes variants by size and color", func(t *testing.T) {
		store, _ := newTestStore(t)
		store.AddItem(ctx, ref("1", "M", "Black", 10), 1)
		store.AddItem(ctx, ref("1", "L", "Black", 10), 1)
		store.AddItem(ctx, ref("1", "M", "White", 10), 1)
		store.AddItem(ctx, ref("1", "", "", 10), 1)

		if got := len(store.Items()); got != 4 {
			t.Fatalf("expected 4 distinct line items, got %d", got)
		}
	})

	t.Run("clamps merged quantity at maximum", func(t *testing.T) {
		store, _ := newTestStore(t)
		store.AddItem(ctx, ref("1", "", "", 10), 8)
		store.AddItem(ctx, ref("1", "", "", 10), 8)

		if got := store.Items()[0].Quantity; got != MaxQuantity {
			t.Fatalf("expected quantity clamped to %d, got %d", MaxQuantity, got)
		}
	})
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown key fails", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.SetQuantity(ctx, "missing", 3); !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("clamps out-of-range values", func(t *testing.T) {
		store, _ := newTestStore(t)
		r := ref("1", "M", "", 10)
		store.AddItem(ctx, r, 2)

		snapshot, err := store.SetQuantity(ctx, r.Key(), 99)
		if err != nil {
			t.Fatal(err)
		}
		if snapshot.Items[0].Quantity != MaxQuantity {
			t.Fatalf("expected %d, got %d", MaxQuantity, snapshot.Items[0].Quantity)
		}

		snapshot, err = store.SetQuantity(ctx, r.Key(), -5)
		if err != nil {
			t.Fatal(err)
		}
		if snapshot.Items[0].Quantity != MinQuantity {
			t.Fatalf("expected %d, got %d", MinQuantity, snapshot.Items[0].Quantity)
		}
	})
}

func TestChangeQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("absent key is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		store.AddItem(ctx, ref("1", "", "", 10), 2)

		snapshot, err := store.ChangeQuantity(ctx, "missing", 5)
		if err != nil {
			t.Fatal(err)
		}
		if snapshot.ItemCount != 2 {
			t.Fatalf("expected untouched count 2, got %d", snapshot.ItemCount)
		}
	})

	t.Run("delta clamps at both bounds", func(t *testing.T) {
		store, _ := newTestStore(t)
		r := ref("7", "", "", 10)
		store.AddItem(ctx, r, 1)

		snapshot, _ := store.ChangeQuantity(ctx, r.Key(), 15)
		if snapshot.Items[0].Quantity != MaxQuantity {
			t.Fatalf("expected ceiling %d, got %d", MaxQuantity, snapshot.Items[0].Quantity)
		}

		snapshot, _ = store.ChangeQuantity(ctx, r.Key(), -100)
		if snapshot.Items[0].Quantity != MinQuantity {
			t.Fatalf("expected floor %d, got %d", MinQuantity, snapshot.Items[0].Quantity)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("removing the last item leaves no record", func(t *testing.T) {
		store, adapter := newTestStore(t)
		r := ref("7", "", "", 10)
		store.AddItem(ctx, r, 1)
		store.ChangeQuantity(ctx, r.Key(), 15)

		snapshot, err := store.RemoveItem(ctx, r.Key())
		if err != nil {
			t.Fatal(err)
		}
		if snapshot.ItemCount != 0 {
			t.Fatalf("expected empty cart, got count %d", snapshot.ItemCount)
		}
		if adapter.Len() != 0 {
			t.Fatalf("expected no persisted record, adapter holds %d", adapter.Len())
		}
	})

	t.Run("absent key is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		store.AddItem(ctx, ref("1", "", "", 10), 2)

		snapshot, err := store.RemoveItem(ctx, "missing")
		if err != nil {
			t.Fatal(err)
		}
		if len(snapshot.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(snapshot.Items))
		}
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store, adapter := newTestStore(t)

	store.AddItem(ctx, ref("1", "M", "", 60), 1)
	store.ApplyPromo(ctx, models.PromoResult{Valid: true, Code: "velvet20", DiscountAmount: 12})

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Count() != 0 {
		t.Fatalf("expected empty cart, got count %d", store.Count())
	}
	if store.Promo() != nil {
		t.Fatal("expected promotion dropped on clear")
	}
	if adapter.Len() != 0 {
		t.Fatalf("expected record removed, adapter holds %d", adapter.Len())
	}

	// clearing twice is fine
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemoryAdapter()
	logger := zap.NewNop()

	first := NewStore(adapter, "cart:s1", logger)
	first.Load(ctx)
	first.AddItem(ctx, ref("1", "M", "Black", 30), 2)
	first.AddItem(ctx, ref("2", "", "", 15), 1)
	first.ApplyPromo(ctx, models.PromoResult{Valid: true, Code: "VELVET20", DiscountAmount: 15})

	second := NewStore(adapter, "cart:s1", logger)
	second.Load(ctx)

	if got := len(second.Items()); got != 2 {
		t.Fatalf("expected 2 items after reload, got %d", got)
	}
	if second.Count() != 3 {
		t.Fatalf("expected count 3 after reload, got %d", second.Count())
	}
	promo := second.Promo()
	if promo == nil || promo.DiscountAmount != 15 {
		t.Fatalf("expected promotion to survive reload, got %+v", promo)
	}
}

func TestLoadMalformedRecord(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemoryAdapter()
	if err := adapter.Write(ctx, "cart:bad", "not a cart"); err != nil {
		t.Fatal(err)
	}

	store := NewStore(adapter, "cart:bad", zap.NewNop())
	snapshot := store.Load(ctx)

	if snapshot.ItemCount != 0 {
		t.Fatalf("expected malformed record to load as empty cart, got count %d", snapshot.ItemCount)
	}
}

// failingAdapter errors on every operation.
type failingAdapter struct{}

func (failingAdapter) Read(context.Context, string, any) (bool, error) {
	return false, errors.New("storage down")
}
func (failingAdapter) Write(context.Context, string, any) error { return errors.New("storage down") }
func (failingAdapter) Remove(context.Context, string) error     { return errors.New("storage down") }

func TestStorageFailuresAreNonFatal(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingAdapter{}, "cart:down", zap.NewNop())
	store.Load(ctx)

	snapshot, err := store.AddItem(ctx, ref("1", "", "", 10), 2)
	if err != nil {
		t.Fatalf("expected mutation to stand despite storage failure, got %v", err)
	}
	if snapshot.ItemCount != 2 {
		t.Fatalf("expected count 2, got %d", snapshot.ItemCount)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("expected clear to tolerate storage failure, got %v", err)
	}
}

func TestApplyPromoIgnoresInvalid(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.AddItem(ctx, ref("1", "", "", 100), 1)

	store.ApplyPromo(ctx, models.PromoResult{Valid: false, Code: "BOGUS"})
	if store.Promo() != nil {
		t.Fatal("expected invalid promotion to be ignored")
	}

	store.ApplyPromo(ctx, models.PromoResult{Valid: true, Code: "VELVET20", DiscountAmount: 20})
	promo := store.Promo()
	if promo == nil || promo.Code != "VELVET20" {
		t.Fatalf("expected applied promotion, got %+v", promo)
	}

	// later item changes keep the discount
	store.AddItem(ctx, ref("2", "", "", 10), 1)
	if store.Promo() == nil {
		t.Fatal("expected promotion to survive later mutations")
	}
}
