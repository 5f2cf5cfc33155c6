// Package event stores processed event IDs so redelivered bus messages are
// handled at most once.
package event

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	MarkAsProcessed(ctx context.Context, id string) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (id, type, processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.conn.Exec(ctx, query,
		event.ID, string(event.Type), event.Processed, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create event", zap.Error(err))
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, type, processed FROM events WHERE id = $1`

	var e models.Event
	var eventType string
	err := r.conn.QueryRow(ctx, query, id).Scan(&e.ID, &eventType, &e.Processed)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("Failed to get event", zap.Error(err))
		}
		return nil, err
	}

	e.Type = enum.EventType(eventType)
	return &e, nil
}

func (r *repository) MarkAsProcessed(ctx context.Context, id string) error {
	const query = `UPDATE events SET processed = TRUE, updated_at = $2 WHERE id = $1`

	_, err := r.conn.Exec(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark event as processed", zap.Error(err))
	}
	return err
}
