// Package handler exposes the audit trail read API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tally/internal/audit"
	"tally/internal/platform/middleware"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/platform/httputil"
)

// Service defines the audit read operations the HTTP layer delegates to.
type Service interface {
	List(ctx context.Context, filter audit.Filter, page audit.Pagination, actor id.Actor) (*audit.Page, error)
}

// Handler handles audit trail endpoints.
type Handler struct {
	logger       *slog.Logger
	audit        Service
	jwtValidator middleware.JWTValidator
}

// New creates an audit Handler.
func New(audit Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		audit:        audit,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the audit routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	auditRouter := chi.NewRouter()
	auditRouter.Use(middleware.Recovery(h.logger))
	auditRouter.Use(middleware.RequestID)
	auditRouter.Use(middleware.Logger(h.logger))
	auditRouter.Use(middleware.Timeout(30 * time.Second))
	auditRouter.Use(middleware.ContentTypeJSON)
	auditRouter.Use(middleware.RequireActor(h.jwtValidator, h.logger))

	auditRouter.Get("/", h.handleListRecords)

	r.Mount("/audit", auditRouter)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	filter, page, err := parseListQuery(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid audit list query",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.audit.List(ctx, filter, page, actor)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to list audit records",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func parseListQuery(r *http.Request) (audit.Filter, audit.Pagination, error) {
	q := r.URL.Query()

	var filter audit.Filter
	if raw := q.Get("resource"); raw != "" {
		filter.Resource = &raw
	}
	if raw := q.Get("resourceId"); raw != "" {
		filter.ResourceID = &raw
	}
	if raw := q.Get("userId"); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return filter, audit.Pagination{}, dErrors.New(dErrors.CodeValidation, "userId must be a valid UUID")
		}
		filter.UserID = &userID
	}
	if raw := q.Get("action"); raw != "" {
		action := audit.Action(raw)
		filter.Action = &action
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, audit.Pagination{}, dErrors.New(dErrors.CodeValidation, "from must be RFC 3339")
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, audit.Pagination{}, dErrors.New(dErrors.CodeValidation, "to must be RFC 3339")
		}
		filter.To = &to
	}

	var page audit.Pagination
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, page, dErrors.New(dErrors.CodeValidation, "page must be an integer")
		}
		page.Page = n
	}
	if raw := q.Get("perPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, page, dErrors.New(dErrors.CodeValidation, "perPage must be an integer")
		}
		page.PerPage = n
	}

	return filter, page.Normalize(), nil
}
