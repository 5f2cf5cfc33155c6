// Package session keeps the signed-in identity record for a browser
// session. Absence of the record means logged out.
package session

import (
	"context"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

// Manager reads and writes user records through the persistence adapter.
type Manager struct {
	adapter storage.Adapter
	logger  *zap.Logger
}

func NewManager(adapter storage.Adapter, logger *zap.Logger) *Manager {
	return &Manager{
		adapter: adapter,
		logger:  logger,
	}
}

// Current returns the stored user, or nil when logged out. Unreadable
// records are treated as logged out rather than surfaced as errors.
func (m *Manager) Current(ctx context.Context, key string) *models.User {
	var user models.User

	found, err := m.adapter.Read(ctx, key, &user)
	if err != nil {
		m.logger.Warn("Failed to read session record, treating as logged out",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	return &user
}

// Set persists the identity record for the session.
func (m *Manager) Set(ctx context.Context, key string, user models.User) error {
	return m.adapter.Write(ctx, key, user)
}

// Clear removes the identity record. Clearing an absent record is a no-op.
func (m *Manager) Clear(ctx context.Context, key string) error {
	return m.adapter.Remove(ctx, key)
}
