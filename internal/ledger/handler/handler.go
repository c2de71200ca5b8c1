// Package handler exposes the purchase ledger over HTTP. It stays thin:
// decode, delegate to the service, translate errors. Authorization decisions
// live in the service layer where the actor's scope is applied.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tally/internal/ledger/models"
	"tally/internal/platform/middleware"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/platform/httputil"
)

// Service defines the ledger operations the HTTP layer delegates to.
type Service interface {
	CreatePurchase(ctx context.Context, attrs models.PurchaseAttrs, items []models.ItemInput, actor id.Actor) (*models.Purchase, error)
	GetPurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error)
	ListPurchases(ctx context.Context, filter models.ListFilter, page models.Pagination, actor id.Actor) (*models.PurchasePage, error)
	ClosePurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error)
	ReopenPurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error)
	DeletePurchase(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) error
	RecalculateTotal(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error)
	AddItems(ctx context.Context, purchaseID id.PurchaseID, items []models.ItemInput, actor id.Actor) (*models.Purchase, error)
	UpdateItem(ctx context.Context, purchaseID id.PurchaseID, itemID id.ItemID, quantity int, actor id.Actor) (*models.PurchaseItem, error)
	RemoveItem(ctx context.Context, purchaseID id.PurchaseID, itemID id.ItemID, actor id.Actor) error
}

// Handler handles purchase ledger endpoints.
type Handler struct {
	logger       *slog.Logger
	ledger       Service
	jwtValidator middleware.JWTValidator
}

// New creates a ledger Handler.
func New(ledger Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		ledger:       ledger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the ledger routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	ledgerRouter := chi.NewRouter()
	ledgerRouter.Use(middleware.Recovery(h.logger))
	ledgerRouter.Use(middleware.RequestID)
	ledgerRouter.Use(middleware.Logger(h.logger))
	ledgerRouter.Use(middleware.Timeout(30 * time.Second))
	ledgerRouter.Use(middleware.ContentTypeJSON)
	ledgerRouter.Use(middleware.RequireActor(h.jwtValidator, h.logger))

	ledgerRouter.Post("/purchases", h.handleCreatePurchase)
	ledgerRouter.Get("/purchases", h.handleListPurchases)
	ledgerRouter.Get("/purchases/{purchaseID}", h.handleGetPurchase)
	ledgerRouter.Delete("/purchases/{purchaseID}", h.handleDeletePurchase)
	ledgerRouter.Post("/purchases/{purchaseID}/close", h.handleClosePurchase)
	ledgerRouter.Post("/purchases/{purchaseID}/reopen", h.handleReopenPurchase)
	ledgerRouter.Post("/purchases/{purchaseID}/recalculate", h.handleRecalculateTotal)
	ledgerRouter.Post("/purchases/{purchaseID}/items", h.handleAddItems)
	ledgerRouter.Patch("/purchases/{purchaseID}/items/{itemID}", h.handleUpdateItem)
	ledgerRouter.Delete("/purchases/{purchaseID}/items/{itemID}", h.handleRemoveItem)

	r.Mount("/", ledgerRouter)
}

func (h *Handler) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.warn(ctx, "invalid create purchase request", err)
		httputil.WriteError(w, err)
		return
	}

	attrs, items, err := req.toDomain()
	if err != nil {
		h.warn(ctx, "invalid create purchase request", err)
		httputil.WriteError(w, err)
		return
	}

	purchase, err := h.ledger.CreatePurchase(ctx, attrs, items, actor)
	if err != nil {
		h.serviceError(ctx, w, "failed to create purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, purchase)
}

func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	filter, page, err := parseListQuery(r)
	if err != nil {
		h.warn(ctx, "invalid list purchases query", err)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.ledger.ListPurchases(ctx, filter, page, actor)
	if err != nil {
		h.serviceError(ctx, w, "failed to list purchases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	purchase, err := h.ledger.GetPurchase(ctx, purchaseID, actor)
	if err != nil {
		h.serviceError(ctx, w, "failed to load purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, purchase)
}

func (h *Handler) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.ledger.DeletePurchase(ctx, purchaseID, actor); err != nil {
		h.serviceError(ctx, w, "failed to delete purchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClosePurchase(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "failed to close purchase", h.ledger.ClosePurchase)
}

func (h *Handler) handleReopenPurchase(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "failed to reopen purchase", h.ledger.ReopenPurchase)
}

func (h *Handler) handleRecalculateTotal(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "failed to recalculate purchase total", h.ledger.RecalculateTotal)
}

// handleTransition covers the operations that take only a purchase id and
// return the updated aggregate.
func (h *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	logMsg string,
	op func(ctx context.Context, purchaseID id.PurchaseID, actor id.Actor) (*models.Purchase, error),
) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	purchase, err := op(ctx, purchaseID, actor)
	if err != nil {
		h.serviceError(ctx, w, logMsg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, purchase)
}

func (h *Handler) handleAddItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.warn(ctx, "invalid add items request", err)
		httputil.WriteError(w, err)
		return
	}

	items, err := req.toDomain()
	if err != nil {
		h.warn(ctx, "invalid add items request", err)
		httputil.WriteError(w, err)
		return
	}

	purchase, err := h.ledger.AddItems(ctx, purchaseID, items, actor)
	if err != nil {
		h.serviceError(ctx, w, "failed to add purchase items", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, purchase)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.warn(ctx, "invalid update item request", err)
		httputil.WriteError(w, err)
		return
	}

	item, err := h.ledger.UpdateItem(ctx, purchaseID, itemID, req.Quantity, actor)
	if err != nil {
		h.serviceError(ctx, w, "failed to update purchase item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "purchaseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.ledger.RemoveItem(ctx, purchaseID, itemID, actor); err != nil {
		h.serviceError(ctx, w, "failed to remove purchase item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor pulls the authenticated actor from the context. The auth middleware
// guarantees it is set; a miss means a wiring bug, not a client error.
func (h *Handler) actor(ctx context.Context, w http.ResponseWriter) (id.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.Actor{}, false
	}
	return actor, true
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

// serviceError logs server-side failures and renders every error through the
// shared translator so clients see stable codes.
func (h *Handler) serviceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.warn(ctx, msg, err)
	}
	httputil.WriteError(w, err)
}
