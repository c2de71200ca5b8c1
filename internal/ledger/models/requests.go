package models

import (
	"time"

	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
)

// PurchaseAttrs are the caller-supplied fields for creating a purchase.
// Total is deliberately absent: it is always recomputed from items.
type PurchaseAttrs struct {
	EmployeeID id.EmployeeID
	UserID     *id.UserID
	Date       time.Time
}

// Validate checks mandatory fields before the attrs reach the pipeline.
func (a PurchaseAttrs) Validate() error {
	if a.EmployeeID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "employeeId is required")
	}
	if a.Date.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return nil
}

// ItemInput is a caller-supplied line: which product, how many. Prices are
// never accepted from callers; they are snapshotted from the catalog.
type ItemInput struct {
	ProductID id.ProductID
	Quantity  int
}

// Validate rejects malformed lines before the state machine sees them.
func (i ItemInput) Validate() error {
	if i.ProductID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "productId is required")
	}
	if i.Quantity < 1 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer")
	}
	return nil
}

// ValidateItems validates a batch, reporting the first offending line.
func ValidateItems(items []ItemInput) error {
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "items[%d]: %v", idx, err)
		}
	}
	return nil
}

// ListFilter narrows purchase listings. Zero values mean "no constraint";
// visibility scoping is separate and always applied on top.
type ListFilter struct {
	EmployeeID *id.EmployeeID
	Closed     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Pagination is a normalized page request.
type Pagination struct {
	Page    int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Normalize clamps pagination to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListMeta describes a page of results.
type ListMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// PurchasePage is the result of a scoped listing.
type PurchasePage struct {
	Data []*Purchase `json:"data"`
	Meta ListMeta    `json:"meta"`
}
