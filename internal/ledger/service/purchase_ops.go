package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tally/internal/audit"
	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/platform/sentinel"
	"tally/pkg/requestcontext"
)

// CreatePurchase inserts a purchase and its initial items as one atomic
// unit. If any item references an unknown product the whole transaction
// aborts; callers never observe an orphaned purchase. The supplied total, if
// any, is ignored: totals are always derived.
func (s *Service) CreatePurchase(ctx context.Context, attrs models.PurchaseAttrs, items []models.ItemInput, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreatePurchase")
	defer span.End()

	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateItems(items); err != nil {
		return nil, err
	}

	// An employee always owns what they create: a supplied userId is
	// overridden so purchases cannot be attributed to someone else.
	userID := attrs.UserID
	if actor.Role == id.RoleEmployee {
		owner := actor.ID
		userID = &owner
	}

	now := requestcontext.Now(ctx)
	purchase := &models.Purchase{
		ID:         id.NewPurchaseID(),
		EmployeeID: attrs.EmployeeID,
		UserID:     userID,
		Date:       attrs.Date,
		Closed:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.employees.FindByID(ctx, attrs.EmployeeID); err != nil {
			if dErrors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "employee %s not found", attrs.EmployeeID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve employee")
		}

		if err := s.purchases.CreatePurchase(ctx, purchase); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create purchase")
		}

		built, err := s.buildItems(ctx, purchase, items)
		if err != nil {
			return err
		}
		if len(built) > 0 {
			if err := s.purchases.InsertItems(ctx, built); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert purchase items")
			}
		}

		purchase.Items = built
		purchase.RecomputeTotal()
		if err := s.purchases.UpdatePurchase(ctx, purchase); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store purchase total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PurchasesCreated.Inc()
	}
	s.recordAudit(ctx, actor, audit.ActionCreate, audit.ResourcePurchase, purchase.ID.String(),
		nil, audit.Snapshot(purchase))

	return purchase, nil
}

// GetPurchase loads a purchase with its items, under the actor's scope.
func (s *Service) GetPurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.GetPurchase")
	defer span.End()

	purchase, err := s.purchases.FindWithItems(ctx, purchaseID, models.ScopeFor(actor))
	if err != nil {
		return nil, scopedLoadErr(err, actor, "purchase")
	}
	return purchase, nil
}

// ListPurchases pages through purchases visible to the actor. The scope is
// part of the query itself; restricted rows are never fetched.
func (s *Service) ListPurchases(ctx context.Context, filter models.ListFilter, page models.Pagination, actor id.Actor) (*models.PurchasePage, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.ListPurchases")
	defer span.End()

	page = page.Normalize()
	purchases, total, err := s.purchases.List(ctx, models.ScopeFor(actor), filter, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list purchases")
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return &models.PurchasePage{
		Data: purchases,
		Meta: models.ListMeta{Page: page.Page, PerPage: page.PerPage, Total: total},
	}, nil
}

// ClosePurchase transitions the aggregate to its frozen state. Closing an
// already-closed purchase is an error, not a no-op, and the check happens
// against a locked row so concurrent closes cannot both succeed.
func (s *Service) ClosePurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.ClosePurchase")
	defer span.End()

	var purchase *models.Purchase
	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loaded, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		items, err := s.purchases.ListItems(ctx, purchaseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase items")
		}
		loaded.Items = items
		oldValue = audit.Snapshot(loaded)

		if err := loaded.Close(); err != nil {
			return err
		}
		loaded.UpdatedAt = requestcontext.Now(ctx)
		if err := s.purchases.UpdatePurchase(ctx, loaded); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close purchase")
		}
		purchase = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PurchasesClosed.Inc()
	}
	s.recordAudit(ctx, actor, audit.ActionUpdate, audit.ResourcePurchase, purchase.ID.String(),
		oldValue, audit.Snapshot(purchase))

	return purchase, nil
}

// ReopenPurchase lifts the frozen state. It is an explicit admin repair
// operation and is audited like any other update.
func (s *Service) ReopenPurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.ReopenPurchase")
	defer span.End()

	if actor.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "reopening a purchase requires the admin role")
	}

	var purchase *models.Purchase
	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loaded, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		items, err := s.purchases.ListItems(ctx, purchaseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase items")
		}
		loaded.Items = items
		oldValue = audit.Snapshot(loaded)

		if err := loaded.Reopen(); err != nil {
			return err
		}
		loaded.UpdatedAt = requestcontext.Now(ctx)
		if err := s.purchases.UpdatePurchase(ctx, loaded); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reopen purchase")
		}
		purchase = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.ActionUpdate, audit.ResourcePurchase, purchase.ID.String(),
		oldValue, audit.Snapshot(purchase))

	return purchase, nil
}

// DeletePurchase removes a purchase and, by cascade, its items. Deletion is
// reserved for admin and manager roles.
func (s *Service) DeletePurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) error {
	ctx, span := s.tracer.Start(ctx, "ledger.DeletePurchase")
	defer span.End()

	if !actor.Role.Unrestricted() {
		return dErrors.New(dErrors.CodeForbidden, "deleting a purchase requires the admin or manager role")
	}

	var oldValue []byte

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// The pre-delete snapshot has to be taken before the row goes away.
		loaded, err := s.purchases.FindWithItems(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		oldValue = audit.Snapshot(loaded)

		if err := s.purchases.DeletePurchase(ctx, purchaseID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete purchase")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, actor, audit.ActionDelete, audit.ResourcePurchase, purchaseID.String(),
		oldValue, nil)

	return nil
}

// RecalculateTotal recomputes the stored total from the current item rows.
// It runs after every item mutation internally; this exported form is the
// explicit repair operation for admin and manager roles.
func (s *Service) RecalculateTotal(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.RecalculateTotal")
	defer span.End()

	if !actor.Role.Unrestricted() {
		return nil, dErrors.New(dErrors.CodeForbidden, "recalculating a total requires the admin or manager role")
	}

	var purchase *models.Purchase
	var oldValue []byte
	var previous decimal.Decimal
	var changed bool

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		loaded, err := s.purchases.FindByIDForUpdate(ctx, purchaseID, models.ScopeFor(actor))
		if err != nil {
			return scopedLoadErr(err, actor, "purchase")
		}
		items, err := s.purchases.ListItems(ctx, purchaseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase items")
		}
		loaded.Items = items
		oldValue = audit.Snapshot(loaded)

		previous = loaded.Total
		loaded.RecomputeTotal()
		changed = !previous.Equal(loaded.Total)
		if changed {
			loaded.UpdatedAt = requestcontext.Now(ctx)
			if err := s.purchases.UpdatePurchase(ctx, loaded); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store recalculated total")
			}
		}
		purchase = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.WarnContext(ctx, "repaired drifted purchase total",
			"purchase_id", purchase.ID.String(),
			"previous_total", previous.String(),
			"total", purchase.Total.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		s.recordAudit(ctx, actor, audit.ActionUpdate, audit.ResourcePurchase, purchase.ID.String(),
			oldValue, audit.Snapshot(purchase))
	}

	return purchase, nil
}
