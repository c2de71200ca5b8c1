// Package audit captures before/after records for every committed mutation.
// Records are append-only; the core never updates or deletes them.
package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "tally/pkg/domain"
)

// Action classifies what happened to the resource.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	// Login actions are reserved for the external auth layer, which records
	// onto the same trail with resource "auth" and no resource ID.
	ActionLogin       Action = "LOGIN"
	ActionLoginFailed Action = "LOGIN_FAILED"
)

// Logical resource names used across the trail.
const (
	ResourcePurchase     = "purchase"
	ResourcePurchaseItem = "purchase_item"
	ResourceProduct      = "product"
	ResourceAuth         = "auth"
)

// Record is the persisted audit entry. Its JSON shape is a contract external
// tooling depends on; field names must not change.
//
// Snapshot semantics: CREATE carries only NewValue, DELETE only OldValue,
// UPDATE both. RequestID is always present so every record can be correlated
// back to the inbound request that caused it.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *id.UserID      `json:"userId"`
	Action     Action          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *string         `json:"resourceId"`
	OldValue   json.RawMessage `json:"oldValue"`
	NewValue   json.RawMessage `json:"newValue"`
	RequestID  string          `json:"requestId"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Snapshot marshals an entity into a raw JSON snapshot. Marshal failures
// return nil rather than blocking capture; the value types involved are all
// plain structs so this does not happen in practice.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("audit snapshot marshal failed", "error", err)
		return nil
	}
	return raw
}

// Filter narrows audit listings. Nil fields mean "no constraint".
type Filter struct {
	Resource   *string
	ResourceID *string
	UserID     *id.UserID
	Action     *Action
	From       *time.Time
	To         *time.Time
}

// Pagination is a normalized page request for audit listings.
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

// Meta describes a page of records.
type Meta struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// Page is a filtered, newest-first slice of the trail.
type Page struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}
