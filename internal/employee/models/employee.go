// Package models defines the employee entity the ledger attributes purchases
// to. Employee administration is out of scope; the ledger only needs to
// resolve references.
package models

import (
	"time"

	id "tally/pkg/domain"
)

// Employee is a consumer a purchase is attributed to.
type Employee struct {
	ID        id.EmployeeID `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
}
