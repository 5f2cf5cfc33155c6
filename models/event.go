package models

import (
	"encoding/json"
	"time"

	"gofalre.io/storefront/models/enum"
)

// Event is a storefront or catalog event carried over the message bus.
type Event struct {
	ID        string          `json:"id"`
	Type      enum.EventType  `json:"type"`
	ProductID string          `json:"product_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Processed bool            `json:"processed"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
