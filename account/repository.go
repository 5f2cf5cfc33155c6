// Package account persists user accounts. Password hashing and credential
// checks live in the storefront service, not here.
package account

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.Account, error)
	Create(ctx context.Context, tx pgx.Tx, account *models.Account) error
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

// querier lets repository methods run inside or outside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repository) querier(tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.conn
}

func (r *repository) GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.Account, error) {
	const query = `SELECT id, first_name, last_name, email, password, role, newsletter, created_at
		FROM users WHERE email = $1`

	var a models.Account
	err := r.querier(tx).QueryRow(ctx, query, email).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash,
		&a.Role, &a.Newsletter, &a.CreatedAt,
	)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("Failed to get account by email", zap.Error(err))
		}
		return nil, err
	}

	return &a, nil
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, account *models.Account) error {
	const query = `INSERT INTO users (first_name, last_name, email, password, newsletter, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`

	err := r.querier(tx).QueryRow(ctx, query,
		account.FirstName, account.LastName, account.Email,
		account.PasswordHash, account.Newsletter, account.Role,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create account", zap.Error(err))
		return err
	}

	return nil
}
