// Package memory keeps the ledger in maps. It backs unit tests and local
// runs and intentionally favors clarity over performance.
//
// Transactions are a coarse lock plus a snapshot: RunInTx serializes all
// transactional work, clones the state on entry, and restores the clone when
// the callback fails. That gives the same all-or-nothing visibility the
// postgres store gets from real transactions.
package memory

import (
	"context"
	"sort"
	"sync"

	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	purchases map[id.PurchaseID]*models.Purchase
	items     map[id.ItemID]*models.PurchaseItem
}

func New() *Store {
	return &Store{
		purchases: make(map[id.PurchaseID]*models.Purchase),
		items:     make(map[id.ItemID]*models.PurchaseItem),
	}
}

// RunInTx serializes transactional work and rolls the state back when fn
// fails. Suitable only in-process; the postgres runner replaces it in
// production wiring.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	purchases, items := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(purchases, items)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[id.PurchaseID]*models.Purchase, map[id.ItemID]*models.PurchaseItem) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make(map[id.PurchaseID]*models.Purchase, len(s.purchases))
	for key, purchase := range s.purchases {
		copied := *purchase
		purchases[key] = &copied
	}
	items := make(map[id.ItemID]*models.PurchaseItem, len(s.items))
	for key, item := range s.items {
		copied := *item
		items[key] = &copied
	}
	return purchases, items
}

func (s *Store) restore(purchases map[id.PurchaseID]*models.Purchase, items map[id.ItemID]*models.PurchaseItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = purchases
	s.items = items
}

func (s *Store) CreatePurchase(_ context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchase.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *purchase
	copied.Items = nil
	s.purchases[purchase.ID] = &copied
	return nil
}

func (s *Store) UpdatePurchase(_ context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchase.ID]; !exists {
		return sentinel.ErrNotFound
	}
	copied := *purchase
	copied.Items = nil
	s.purchases[purchase.ID] = &copied
	return nil
}

func (s *Store) DeletePurchase(_ context.Context, purchaseID id.PurchaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchaseID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.purchases, purchaseID)
	// Items cascade with their parent.
	for itemID, item := range s.items {
		if item.PurchaseID == purchaseID {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *Store) FindByID(_ context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(purchaseID, scope)
}

// FindByIDForUpdate matches the postgres store's row-locking read. The memory
// variant relies on RunInTx's coarse serialization, so it is a plain read.
func (s *Store) FindByIDForUpdate(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	return s.FindByID(ctx, purchaseID, scope)
}

func (s *Store) FindWithItems(_ context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, err := s.findLocked(purchaseID, scope)
	if err != nil {
		return nil, err
	}
	purchase.Items = s.itemsOfLocked(purchaseID)
	return purchase, nil
}

func (s *Store) findLocked(purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error) {
	purchase, ok := s.purchases[purchaseID]
	if !ok || !scope.Allows(purchase.UserID) {
		// Out-of-scope rows are indistinguishable from absent ones.
		return nil, sentinel.ErrNotFound
	}
	copied := *purchase
	return &copied, nil
}

func (s *Store) itemsOfLocked(purchaseID id.PurchaseID) []*models.PurchaseItem {
	var items []*models.PurchaseItem
	for _, item := range s.items {
		if item.PurchaseID == purchaseID {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

func (s *Store) List(_ context.Context, scope models.Scope, filter models.ListFilter, page models.Pagination) ([]*models.Purchase, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Purchase
	for _, purchase := range s.purchases {
		if !scope.Allows(purchase.UserID) {
			continue
		}
		if filter.EmployeeID != nil && purchase.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Closed != nil && purchase.Closed != *filter.Closed {
			continue
		}
		if filter.DateFrom != nil && purchase.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && purchase.Date.After(*filter.DateTo) {
			continue
		}
		copied := *purchase
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].Date.After(matched[j].Date)
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) InsertItems(_ context.Context, items []*models.PurchaseItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, exists := s.items[item.ID]; exists {
			return sentinel.ErrConflict
		}
	}
	for _, item := range items {
		copied := *item
		s.items[item.ID] = &copied
	}
	return nil
}

func (s *Store) FindItem(_ context.Context, itemID id.ItemID) (*models.PurchaseItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *Store) UpdateItem(_ context.Context, item *models.PurchaseItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; !exists {
		return sentinel.ErrNotFound
	}
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *Store) DeleteItem(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[itemID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *Store) ListItems(_ context.Context, purchaseID id.PurchaseID) ([]*models.PurchaseItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsOfLocked(purchaseID), nil
}
