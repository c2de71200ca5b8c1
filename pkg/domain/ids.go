// Package domain defines the typed identifiers shared across modules.
//
// IDs are distinct UUID types so that a PurchaseID cannot be passed where a
// ProductID is expected. Parsing happens once at trust boundaries; everything
// past the boundary works with typed values.
package domain

import (
	"github.com/google/uuid"

	dErrors "tally/pkg/domain-errors"
)

type (
	// PurchaseID identifies a purchase aggregate root.
	PurchaseID uuid.UUID
	// ItemID identifies a single purchase line item.
	ItemID uuid.UUID
	// ProductID identifies a catalog product.
	ProductID uuid.UUID
	// EmployeeID identifies the consuming employee a purchase is attributed to.
	EmployeeID uuid.UUID
	// UserID identifies the acting user account.
	UserID uuid.UUID
)

func (id PurchaseID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string     { return uuid.UUID(id).String() }
func (id ProductID) String() string  { return uuid.UUID(id).String() }
func (id EmployeeID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string     { return uuid.UUID(id).String() }

func (id PurchaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewPurchaseID returns a fresh random purchase ID.
func NewPurchaseID() PurchaseID { return PurchaseID(uuid.New()) }

// NewItemID returns a fresh random item ID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// NewProductID returns a fresh random product ID.
func NewProductID() ProductID { return ProductID(uuid.New()) }

// NewEmployeeID returns a fresh random employee ID.
func NewEmployeeID() EmployeeID { return EmployeeID(uuid.New()) }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParsePurchaseID parses a purchase ID from its string form.
func ParsePurchaseID(raw string) (PurchaseID, error) {
	parsed, err := parseUUID(raw)
	return PurchaseID(parsed), err
}

// ParseItemID parses an item ID from its string form.
func ParseItemID(raw string) (ItemID, error) {
	parsed, err := parseUUID(raw)
	return ItemID(parsed), err
}

// ParseProductID parses a product ID from its string form.
func ParseProductID(raw string) (ProductID, error) {
	parsed, err := parseUUID(raw)
	return ProductID(parsed), err
}

// ParseEmployeeID parses an employee ID from its string form.
func ParseEmployeeID(raw string) (EmployeeID, error) {
	parsed, err := parseUUID(raw)
	return EmployeeID(parsed), err
}

// ParseUserID parses a user ID from its string form.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	return UserID(parsed), err
}
