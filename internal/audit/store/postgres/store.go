// Package postgres persists the audit trail in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tally/internal/audit"
	id "tally/pkg/domain"
)

// Store implements audit.Store. Appends never join an ambient transaction:
// audit persistence is deliberately outside the business transaction so a
// failed append cannot roll a committed mutation back.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, record audit.Record) error {
	query := `
		INSERT INTO audit_records (id, user_id, action, resource, resource_id, old_value, new_value, request_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var userID *uuid.UUID
	if record.UserID != nil {
		raw := uuid.UUID(*record.UserID)
		userID = &raw
	}
	var oldValue, newValue any
	if record.OldValue != nil {
		oldValue = []byte(record.OldValue)
	}
	if record.NewValue != nil {
		newValue = []byte(record.NewValue)
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		userID,
		string(record.Action),
		record.Resource,
		record.ResourceID,
		oldValue,
		newValue,
		record.RequestID,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter audit.Filter, page audit.Pagination) ([]audit.Record, int, error) {
	where, args := buildWhere(filter)

	countQuery := "SELECT COUNT(*) FROM audit_records" + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, user_id, action, resource, resource_id, old_value, new_value, request_id, timestamp
		FROM audit_records%s
		ORDER BY timestamp DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			record   audit.Record
			userID   *uuid.UUID
			oldValue []byte
			newValue []byte
		)
		err := rows.Scan(
			&record.ID,
			&userID,
			&record.Action,
			&record.Resource,
			&record.ResourceID,
			&oldValue,
			&newValue,
			&record.RequestID,
			&record.Timestamp,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit record: %w", err)
		}
		if userID != nil {
			uid := id.UserID(*userID)
			record.UserID = &uid
		}
		record.OldValue = oldValue
		record.NewValue = newValue
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, total, nil
}

func buildWhere(filter audit.Filter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Resource != nil {
		add("resource = $%d", *filter.Resource)
	}
	if filter.ResourceID != nil {
		add("resource_id = $%d", *filter.ResourceID)
	}
	if filter.UserID != nil {
		add("user_id = $%d", uuid.UUID(*filter.UserID))
	}
	if filter.Action != nil {
		add("action = $%d", string(*filter.Action))
	}
	if filter.From != nil {
		add("timestamp >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("timestamp <= $%d", *filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
