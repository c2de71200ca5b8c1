// Package service orchestrates the transactional write pipeline for the
// purchase ledger. Every mutation runs as one atomic unit, emits exactly one
// audit record after commit, and is reachable only through the visibility
// scope computed from the acting user.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalogmodels "tally/internal/catalog/models"
	employeemodels "tally/internal/employee/models"
	"tally/internal/audit"
	"tally/internal/ledger/models"
	"tally/internal/platform/metrics"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/platform/sentinel"
)

// PurchaseStore is the persistence surface for the aggregate. Read methods
// take the visibility scope so ownership is part of the query predicate, and
// mutations inside a transaction see the context-carried transaction.
type PurchaseStore interface {
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	UpdatePurchase(ctx context.Context, purchase *models.Purchase) error
	DeletePurchase(ctx context.Context, purchaseID id.PurchaseID) error
	FindByID(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error)
	FindByIDForUpdate(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error)
	FindWithItems(ctx context.Context, purchaseID id.PurchaseID, scope models.Scope) (*models.Purchase, error)
	List(ctx context.Context, scope models.Scope, filter models.ListFilter, page models.Pagination) ([]*models.Purchase, int, error)

	InsertItems(ctx context.Context, items []*models.PurchaseItem) error
	FindItem(ctx context.Context, itemID id.ItemID) (*models.PurchaseItem, error)
	UpdateItem(ctx context.Context, item *models.PurchaseItem) error
	DeleteItem(ctx context.Context, itemID id.ItemID) error
	ListItems(ctx context.Context, purchaseID id.PurchaseID) ([]*models.PurchaseItem, error)
}

// TxRunner executes fn inside one transaction; any error rolls it back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductStore resolves product references and supplies the price snapshot.
type ProductStore interface {
	FindByID(ctx context.Context, productID id.ProductID) (*catalogmodels.Product, error)
}

// EmployeeStore resolves the employee a purchase is attributed to.
type EmployeeStore interface {
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*employeemodels.Employee, error)
}

// AuditRecorder accepts one record per committed mutation. It never fails
// the caller; persistence problems stay inside the audit subsystem.
type AuditRecorder interface {
	Record(ctx context.Context, record audit.Record)
}

// Service is the ledger's write pipeline and read surface.
type Service struct {
	purchases PurchaseStore
	products  ProductStore
	employees EmployeeStore
	tx        TxRunner
	recorder  AuditRecorder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(purchases PurchaseStore, products ProductStore, employees EmployeeStore, tx TxRunner, recorder AuditRecorder, opts ...Option) *Service {
	s := &Service{
		purchases: purchases,
		products:  products,
		employees: employees,
		tx:        tx,
		recorder:  recorder,
		logger:    slog.Default(),
		tracer:    otel.Tracer("tally/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scopedLoadErr maps a scoped lookup failure onto the caller's view.
// Employees get a uniform forbidden whether the purchase is missing or owned
// by someone else, so existence is never leaked. Unrestricted roles get the
// factual not-found.
func scopedLoadErr(err error, actor id.Actor, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		if actor.Role == id.RoleEmployee {
			return dErrors.New(dErrors.CodeForbidden, "access to this "+what+" is denied")
		}
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

// itemLoadErr maps a line lookup failure inside a mutation. The parent
// purchase has already passed the scope check by the time a line is loaded,
// so a missing line is reported factually for every role.
func itemLoadErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "purchase item not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase item")
}

func (s *Service) recordAudit(ctx context.Context, actor id.Actor, action audit.Action, resource string, resourceID string, oldValue, newValue []byte) {
	if s.recorder == nil {
		return
	}
	actorID := actor.ID
	s.recorder.Record(ctx, audit.Record{
		UserID:     &actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

// buildItems resolves every product reference and prices the lines. It runs
// inside the transaction and touches nothing until all references resolve,
// so a single bad product aborts the whole batch before any insert.
func (s *Service) buildItems(ctx context.Context, purchase *models.Purchase, inputs []models.ItemInput) ([]*models.PurchaseItem, error) {
	built := make([]*models.PurchaseItem, 0, len(inputs))
	for _, input := range inputs {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "product %s not found", input.ProductID)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve product")
		}
		now := purchase.UpdatedAt
		built = append(built, &models.PurchaseItem{
			ID:         id.NewItemID(),
			PurchaseID: purchase.ID,
			ProductID:  product.ID,
			Quantity:   input.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: models.PriceLine(input.Quantity, product.Price),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return built, nil
}
