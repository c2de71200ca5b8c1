package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tally/internal/catalog/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
	txcontext "tally/pkg/platform/tx"
)

// Postgres reads products from PostgreSQL. Lookups participate in an ambient
// transaction when one is carried in the context, so product validation
// inside the write pipeline sees a consistent snapshot.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	query := `
		SELECT id, name, price, created_at
		FROM products
		WHERE id = $1
	`
	var product models.Product
	var rawID uuid.UUID
	err := s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(productID)).Scan(
		&rawID,
		&product.Name,
		&product.Price,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	product.ID = id.ProductID(rawID)
	return &product, nil
}
