// Package models defines the catalog entities the ledger references.
// Product management itself lives outside this service; only lookups are
// needed here, to resolve references and snapshot prices.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "tally/pkg/domain"
)

// Product is a catalog entry. Price is the current price; purchases snapshot
// it into their items at mutation time.
type Product struct {
	ID        id.ProductID    `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
