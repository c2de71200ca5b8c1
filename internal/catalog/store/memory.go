// Package store provides product lookups for the ledger. In-memory and
// postgres variants share the same semantics: unknown IDs surface
// sentinel.ErrNotFound so the caller can raise a domain error instead of
// leaning on a foreign-key violation.
package store

import (
	"context"
	"sync"

	"tally/internal/catalog/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
)

// InMemory keeps products in a map. It favors clarity over performance.
type InMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]models.Product
}

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[id.ProductID]models.Product)}
}

// Seed inserts or replaces a product. Test and bootstrap helper.
func (s *InMemory) Seed(product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
}

func (s *InMemory) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if product, ok := s.products[productID]; ok {
		copied := product
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
