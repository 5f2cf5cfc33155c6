package storefront

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// Subjects on the message bus.
const (
	cartEventSubjectPrefix = "storefront.event."
	catalogEventSubject    = "catalog.product.>"
)

type EventHandler func(context.Context, *models.Event) error

// EventManager publishes storefront activity events and feeds catalog
// update events into the worker pool. A nil NATS connection disables
// eventing entirely, which is how tests and single-process runs operate.
type EventManager struct {
	natsConn *nats.Conn
	sub      *nats.Subscription
	handlers map[enum.EventType]EventHandler
	logger   *zap.Logger
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		handlers: make(map[enum.EventType]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType enum.EventType, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType enum.EventType) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

// Publish sends the event to the bus, fire and forget. Publish failures are
// logged, never surfaced: cart operations must not fail because the bus is
// down.
func (em *EventManager) Publish(event *models.Event) {
	if em.natsConn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		em.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	subject := cartEventSubjectPrefix + string(event.Type)
	if err := em.natsConn.Publish(subject, data); err != nil {
		em.logger.Warn("Failed to publish event",
			zap.String("subject", subject), zap.Error(err))
	}
}

// SubscribeToCatalogEvents routes product update events from the catalog
// service into the worker pool. The subscription is held so Close can stop
// delivery before the pool shuts down.
func (em *EventManager) SubscribeToCatalogEvents(wp *WorkerPool) error {
	if em.natsConn == nil {
		return nil
	}

	sub, err := em.natsConn.Subscribe(catalogEventSubject, func(msg *nats.Msg) {
		var event models.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.Error(err))
			return
		}

		wp.Submit(&event)
	})
	if err != nil {
		return err
	}

	em.sub = sub
	return nil
}

// Close stops the catalog subscription. Callers shut the worker pool down
// only after Close returns.
func (em *EventManager) Close() {
	if em.sub == nil {
		return
	}

	if err := em.sub.Unsubscribe(); err != nil {
		em.logger.Warn("Failed to unsubscribe from catalog events", zap.Error(err))
	}
	em.sub = nil
}

// newEvent builds a bus event for a cart mutation.
func newEvent(eventType enum.EventType, productID string, payload any) *models.Event {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}

	now := time.Now()
	return &models.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProductID: productID,
		Payload:   raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
