// Package models holds the purchase aggregate: a Purchase and its owned
// items form one consistency boundary, so every rule that spans both lives
// here rather than in the service.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
)

// Purchase is the aggregate root. Total is always derived from the items and
// never accepted from callers. Once Closed is set the aggregate is frozen;
// only an explicit admin reopen lifts it.
type Purchase struct {
	ID         id.PurchaseID   `json:"id"`
	EmployeeID id.EmployeeID   `json:"employeeId"`
	UserID     *id.UserID      `json:"userId"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Closed     bool            `json:"closed"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	// Items are loaded explicitly by the store; a nil slice means the
	// aggregate was fetched header-only.
	Items []*PurchaseItem `json:"items,omitempty"`
}

// PurchaseItem is a line under a purchase. UnitPrice snapshots the product
// price at the time of addition so later catalog changes never rewrite
// history. TotalPrice = Quantity * UnitPrice.
type PurchaseItem struct {
	ID         id.ItemID       `json:"id"`
	PurchaseID id.PurchaseID   `json:"purchaseId"`
	ProductID  id.ProductID    `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// EnsureOpen guards every item mutation. Callers must invoke it inside the
// same transaction that performs the write; checking earlier races a
// concurrent close.
func (p *Purchase) EnsureOpen() error {
	if p.Closed {
		return dErrors.New(dErrors.CodeInvalidState, "cannot modify closed purchase")
	}
	return nil
}

// Close transitions OPEN -> CLOSED. Closing twice is a caller error, not a
// no-op: it fails so duplicate close requests surface instead of producing
// silent audit noise.
func (p *Purchase) Close() error {
	if p.Closed {
		return dErrors.New(dErrors.CodeInvalidState, "purchase is already closed")
	}
	p.Closed = true
	return nil
}

// Reopen transitions CLOSED -> OPEN. Reserved for explicit admin repair.
func (p *Purchase) Reopen() error {
	if !p.Closed {
		return dErrors.New(dErrors.CodeInvalidState, "purchase is not closed")
	}
	p.Closed = false
	return nil
}

// RecomputeTotal refreshes Total from the loaded items.
func (p *Purchase) RecomputeTotal() {
	p.Total = SumItemTotals(p.Items)
}

// SumItemTotals returns the sum of line totals for a set of items.
func SumItemTotals(items []*PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// PriceLine computes the line total for a quantity at a unit price.
func PriceLine(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
