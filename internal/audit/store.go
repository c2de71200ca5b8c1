package audit

import "context"

// Store persists audit records. Append-only: no update or delete surface.
type Store interface {
	Append(ctx context.Context, record Record) error
	// List returns records matching the filter ordered newest-first, plus
	// the total match count for pagination.
	List(ctx context.Context, filter Filter, page Pagination) ([]Record, int, error)
}
