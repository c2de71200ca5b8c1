// Package postgres persists the purchase ledger in PostgreSQL. The store is
// pure I/O; lifecycle rules and total computation belong to the models and
// the service.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
	txcontext "tally/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) executor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// mapConstraintErr translates driver constraint violations into sentinel
// errors so services raise domain errors instead of leaking storage detail.
func mapConstraintErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return sentinel.ErrConflict
		case "23503": // foreign_key_violation
			return sentinel.ErrNotFound
		}
	}
	return err
}

func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchases (id, employee_id, user_id, date, total, closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(purchase.ID),
		uuid.UUID(purchase.EmployeeID),
		nullableUserID(purchase.UserID),
		purchase.Date,
		purchase.Total,
		purchase.Closed,
		purchase.CreatedAt,
		purchase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", mapConstraintErr(err))
	}
	return nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase *models.Purchase) error {
	query := `
		UPDATE purchases
		SET date = $2, total = $3, closed = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(purchase.ID),
		purchase.Date,
		purchase.Total,
		purchase.Closed,
		purchase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", mapConstraintErr(err))
	}
	return ensureRowTouched(result, "update purchase")
}

func (s *Store) DeletePurchase(ctx context.Context, purchaseID id.PurchaseID) error {
	// Items cascade via the purchase_items FK.
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM purchases WHERE id = $1`, uuid.UUID(purchaseID))
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return ensureRowTouched(result, "delete purchase")
}

func ensureRowTouched(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const purchaseColumns = "id, employee_id, user_id, date, total, closed, created_at, updated_at"

func (s *Store) FindByID(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	return s.findByID(ctx, purchaseID, scope, false)
}

// FindByIDForUpdate reads the purchase header under a row lock. Mutations
// must use it so the closed-state check and the guarded write happen against
// the same locked row.
func (s *Store) FindByIDForUpdate(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	return s.findByID(ctx, purchaseID, scope, true)
}

func (s *Store) findByID(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope, forUpdate bool) (*models.Purchase, error) {
	query := "SELECT " + purchaseColumns + " FROM purchases WHERE id = $1"
	args := []any{uuid.UUID(purchaseID)}
	if !scope.All {
		// Ownership is part of the predicate itself: out-of-scope rows are
		// indistinguishable from absent ones.
		query += " AND user_id = $2"
		args = append(args, uuid.UUID(scope.UserID))
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	purchase, err := scanPurchase(s.execer(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	return purchase, nil
}

func (s *Store) FindWithItems(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	purchase, err := s.findByID(ctx, purchaseID, scope, false)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	purchase.Items = items
	return purchase, nil
}

func (s *Store) List(ctx context.Context, scope models.Scope, filter models.ListFilter, page models.Pagination) ([]*models.Purchase, int, error) {
	where, args := buildWhere(scope, filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM purchases" + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT %s FROM purchases%s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d",
		purchaseColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, page.PerPage, page.Offset())

	rows, err := s.execer(ctx).QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, total, nil
}

func buildWhere(scope models.Scope, filter models.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if !scope.All {
		add("user_id = $%d", uuid.UUID(scope.UserID))
	}
	if filter.EmployeeID != nil {
		add("employee_id = $%d", uuid.UUID(*filter.EmployeeID))
	}
	if filter.Closed != nil {
		add("closed = $%d", *filter.Closed)
	}
	if filter.DateFrom != nil {
		add("date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("date <= $%d", *filter.DateTo)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) InsertItems(ctx context.Context, items []*models.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, purchase_id, product_id, quantity, unit_price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range items {
		_, err := s.execer(ctx).ExecContext(ctx, query,
			uuid.UUID(item.ID),
			uuid.UUID(item.PurchaseID),
			uuid.UUID(item.ProductID),
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert purchase item: %w", mapConstraintErr(err))
		}
	}
	return nil
}

const itemColumns = "id, purchase_id, product_id, quantity, unit_price, total_price, created_at, updated_at"

func (s *Store) FindItem(ctx context.Context, itemID id.ItemID) (*models.PurchaseItem, error) {
	query := "SELECT " + itemColumns + " FROM purchase_items WHERE id = $1"
	item, err := scanItem(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(itemID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase item: %w", err)
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *models.PurchaseItem) error {
	query := `
		UPDATE purchase_items
		SET quantity = $2, unit_price = $3, total_price = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(item.ID),
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase item: %w", mapConstraintErr(err))
	}
	return ensureRowTouched(result, "update purchase item")
}

func (s *Store) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM purchase_items WHERE id = $1`, uuid.UUID(itemID))
	if err != nil {
		return fmt.Errorf("delete purchase item: %w", err)
	}
	return ensureRowTouched(result, "delete purchase item")
}

func (s *Store) ListItems(ctx context.Context, purchaseID id.PurchaseID) ([]*models.PurchaseItem, error) {
	query := "SELECT " + itemColumns + " FROM purchase_items WHERE purchase_id = $1 ORDER BY created_at, id"
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(purchaseID))
	if err != nil {
		return nil, fmt.Errorf("query purchase items: %w", err)
	}
	defer rows.Close()

	var items []*models.PurchaseItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var (
		purchase   models.Purchase
		purchaseID uuid.UUID
		employeeID uuid.UUID
		userID     *uuid.UUID
	)
	err := row.Scan(
		&purchaseID,
		&employeeID,
		&userID,
		&purchase.Date,
		&purchase.Total,
		&purchase.Closed,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	purchase.ID = id.PurchaseID(purchaseID)
	purchase.EmployeeID = id.EmployeeID(employeeID)
	if userID != nil {
		uid := id.UserID(*userID)
		purchase.UserID = &uid
	}
	return &purchase, nil
}

func scanItem(row rowScanner) (*models.PurchaseItem, error) {
	var (
		item       models.PurchaseItem
		itemID     uuid.UUID
		purchaseID uuid.UUID
		productID  uuid.UUID
	)
	err := row.Scan(
		&itemID,
		&purchaseID,
		&productID,
		&item.Quantity,
		&item.UnitPrice,
		&item.TotalPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ID = id.ItemID(itemID)
	item.PurchaseID = id.PurchaseID(purchaseID)
	item.ProductID = id.ProductID(productID)
	return &item, nil
}

func nullableUserID(userID *id.UserID) *uuid.UUID {
	if userID == nil {
		return nil
	}
	raw := uuid.UUID(*userID)
	return &raw
}
