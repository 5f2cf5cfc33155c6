package enum

// EventType 表示事件的類型
type EventType string

const (
	// Cart activity events published by the storefront.
	EventTypeCartItemAdded   EventType = "cart.item.added"
	EventTypeCartItemUpdated EventType = "cart.item.updated"
	EventTypeCartItemRemoved EventType = "cart.item.removed"
	EventTypeCartCleared     EventType = "cart.cleared"
	EventTypePromoApplied    EventType = "cart.promo.applied"

	// Catalog events consumed from the product service.
	EventTypeProductUpdated EventType = "catalog.product.updated"
	EventTypeProductDeleted EventType = "catalog.product.deleted"
)
