package service

import (
	"context"

	"tally/internal/audit"
	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/requestcontext"
)

// AddItems appends a batch of priced lines to an open purchase. The batch is
// atomic: one unknown product fails the whole call and the ledger state is
// untouched. Prices are captured from the catalog at addition time.
func (s *Service) AddItems(ctx context.Context, purchaseID id.PurchaseID, items []models.ItemInput, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.AddItems")
	defer span.End()

	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "items must not be empty")
	}
	if err := models.ValidateItems(items); err != nil {
		return nil, err
	}

	var purchase *models.Purchase
	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loaded, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		if err := loaded.EnsureOpen(); err != nil {
			return err
		}

		existing, err := s.purchases.ListItems(ctx, purchaseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase items")
		}
		loaded.Items = existing
		oldValue = audit.Snapshot(loaded)

		loaded.UpdatedAt = requestcontext.Now(ctx)
		built, err := s.buildItems(ctx, loaded, items)
		if err != nil {
			return err
		}
		if err := s.purchases.InsertItems(ctx, built); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert purchase items")
		}

		loaded.Items = append(existing, built...)
		loaded.RecomputeTotal()
		if err := s.purchases.UpdatePurchase(ctx, loaded); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store purchase total")
		}
		purchase = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ItemMutations.Inc()
	}
	s.recordAudit(ctx, actor, audit.ActionUpdate, audit.ResourcePurchase, purchase.ID.String(),
		oldValue, audit.Snapshot(purchase))

	return purchase, nil
}

// UpdateItem changes the quantity of a single line. The unit price captured
// when the line was added is never revised here; only the line total and the
// purchase total move.
func (s *Service) UpdateItem(ctx context.Context, purchaseID id.PurchaseID, itemID id.ItemID, quantity int, actor id.Actor) (*models.PurchaseItem, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.UpdateItem")
	defer span.End()

	if quantity < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}

	var item *models.PurchaseItem
	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		purchase, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		if err := purchase.EnsureOpen(); err != nil {
			return err
		}

		// Re-read the line under the parent lock so the quantity change
		// applies to the current row, not a stale one. The parent's
		// visibility is already established, so a missing line is a plain
		// not-found rather than a scoped denial.
		loaded, err := s.purchases.FindItem(ctx, itemID)
		if err != nil {
			return itemLoadErr(err)
		}
		if loaded.PurchaseID != purchaseID {
			return dErrors.New(dErrors.CodeNotFound, "purchase item not found")
		}
		oldValue = audit.Snapshot(loaded)

		loaded.Quantity = quantity
		loaded.TotalPrice = models.PriceLine(quantity, loaded.UnitPrice)
		loaded.UpdatedAt = requestcontext.Now(ctx)
		if err := s.purchases.UpdateItem(ctx, loaded); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update purchase item")
		}

		if err := s.refreshTotal(ctx, purchase); err != nil {
			return err
		}
		item = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ItemMutations.Inc()
	}
	s.recordAudit(ctx, actor, audit.ActionUpdate, audit.ResourcePurchaseItem, item.ID.String(),
		oldValue, audit.Snapshot(item))

	return item, nil
}

// RemoveItem deletes a single line from an open purchase and refreshes the
// stored total.
func (s *Service) RemoveItem(ctx context.Context, purchaseID id.PurchaseID, itemID id.ItemID, actor id.Actor) error {
	ctx, span := s.tracer.Start(ctx, "ledger.RemoveItem")
	defer span.End()

	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		purchase, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		if err := purchase.EnsureOpen(); err != nil {
			return err
		}

		loaded, err := s.purchases.FindItem(ctx, itemID)
		if err != nil {
			return itemLoadErr(err)
		}
		if loaded.PurchaseID != purchaseID {
			return dErrors.New(dErrors.CodeNotFound, "purchase item not found")
		}
		oldValue = audit.Snapshot(loaded)

		if err := s.purchases.DeleteItem(ctx, itemID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete purchase item")
		}
		return s.refreshTotal(ctx, purchase)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ItemMutations.Inc()
	}
	s.recordAudit(ctx, actor, audit.ActionDelete, audit.ResourcePurchaseItem, itemID.String(),
		oldValue, nil)

	return nil
}

// refreshTotal reloads the item rows and stores the derived total on the
// already-locked parent.
func (s *Service) refreshTotal(ctx context.Context, purchase *models.Purchase) error {
	items, err := s.purchases.ListItems(ctx, purchase.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase items")
	}
	purchase.Items = items
	purchase.RecomputeTotal()
	purchase.UpdatedAt = requestcontext.Now(ctx)
	if err := s.purchases.UpdatePurchase(ctx, purchase); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store purchase total")
	}
	return nil
}
