package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tally/internal/employee/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
	txcontext "tally/pkg/platform/tx"
)

// Postgres reads employees from PostgreSQL, joining an ambient transaction
// when the context carries one.
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

func (s *Postgres) FindByID(ctx context.Context, employeeID id.EmployeeID) (*models.Employee, error) {
	query := `
		SELECT id, name, created_at
		FROM employees
		WHERE id = $1
	`
	var employee models.Employee
	var rawID uuid.UUID
	err := s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(employeeID)).Scan(
		&rawID,
		&employee.Name,
		&employee.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	employee.ID = id.EmployeeID(rawID)
	return &employee, nil
}
