package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tally/internal/ledger/handler/mocks"
	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/ledger-mocks.go -package=mocks Service

type LedgerHandlerSuite struct {
	suite.Suite
	admin    id.Actor
	employee id.Actor
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerSuite))
}

func (s *LedgerHandlerSuite) SetupSuite() {
	s.admin = id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}
	s.employee = id.Actor{ID: id.NewUserID(), Role: id.RoleEmployee}
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mockService, logger, nil), mockService
}

// withRouteParams injects chi URL parameters so handler methods can be called
// without going through the full middleware chain.
func withRouteParams(req *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func samplePurchase(actor id.Actor) *models.Purchase {
	owner := actor.ID
	return &models.Purchase{
		ID:         id.NewPurchaseID(),
		EmployeeID: id.NewEmployeeID(),
		UserID:     &owner,
		Date:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Total:      decimal.RequireFromString("75.00"),
	}
}

func (s *LedgerHandlerSuite) TestHandleCreatePurchase() {
	s.Run("creates and returns 201", func() {
		handler, mockService := newTestHandler(s.T())
		purchase := samplePurchase(s.admin)
		mockService.EXPECT().
			CreatePurchase(gomock.Any(), gomock.Any(), gomock.Any(), s.admin).
			Return(purchase, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]any{
			"employeeId": purchase.EmployeeID.String(),
			"date":       "2026-03-14",
			"items": []map[string]any{
				{"productId": id.NewProductID().String(), "quantity": 3},
			},
		})
		req = testutil.WithActor(req, s.admin)

		w := httptest.NewRecorder()
		handler.handleCreatePurchase(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusCreated)
		created := testutil.UnmarshalResponse[models.Purchase](s.T(), w)
		s.Equal(purchase.ID, created.ID)
	})

	s.Run("rejects a malformed body", func() {
		handler, _ := newTestHandler(s.T())
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/purchases", "{not json")
		req = testutil.WithActor(req, s.admin)

		w := httptest.NewRecorder()
		handler.handleCreatePurchase(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("rejects an invalid employee id", func() {
		handler, _ := newTestHandler(s.T())
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]any{
			"employeeId": "not-a-uuid",
			"date":       "2026-03-14",
		})
		req = testutil.WithActor(req, s.admin)

		w := httptest.NewRecorder()
		handler.handleCreatePurchase(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})

	s.Run("fails without an actor in context", func() {
		handler, _ := newTestHandler(s.T())
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]any{})

		w := httptest.NewRecorder()
		handler.handleCreatePurchase(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusInternalServerError)
	})
}

func (s *LedgerHandlerSuite) TestHandleGetPurchase() {
	s.Run("returns the purchase", func() {
		handler, mockService := newTestHandler(s.T())
		purchase := samplePurchase(s.employee)
		mockService.EXPECT().
			GetPurchase(gomock.Any(), purchase.ID, s.employee).
			Return(purchase, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/purchases/"+purchase.ID.String())
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchase.ID.String())

		w := httptest.NewRecorder()
		handler.handleGetPurchase(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusOK)
	})

	s.Run("translates a scope denial to 403", func() {
		handler, mockService := newTestHandler(s.T())
		purchaseID := id.NewPurchaseID()
		mockService.EXPECT().
			GetPurchase(gomock.Any(), purchaseID, s.employee).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "access to this purchase is denied"))

		req := testutil.NewRequest(s.T(), http.MethodGet, "/purchases/"+purchaseID.String())
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchaseID.String())

		w := httptest.NewRecorder()
		handler.handleGetPurchase(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("rejects a malformed purchase id", func() {
		handler, _ := newTestHandler(s.T())
		req := testutil.NewRequest(s.T(), http.MethodGet, "/purchases/oops")
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", "oops")

		w := httptest.NewRecorder()
		handler.handleGetPurchase(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusBadRequest)
	})
}

func (s *LedgerHandlerSuite) TestHandleClosePurchase() {
	s.Run("translates a double close to 409", func() {
		handler, mockService := newTestHandler(s.T())
		purchaseID := id.NewPurchaseID()
		mockService.EXPECT().
			ClosePurchase(gomock.Any(), purchaseID, s.employee).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "purchase is already closed"))

		req := testutil.NewRequest(s.T(), http.MethodPost, "/purchases/"+purchaseID.String()+"/close")
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchaseID.String())

		w := httptest.NewRecorder()
		handler.handleClosePurchase(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusConflict, string(dErrors.CodeInvalidState))
	})

	s.Run("returns the closed purchase", func() {
		handler, mockService := newTestHandler(s.T())
		purchase := samplePurchase(s.employee)
		purchase.Closed = true
		mockService.EXPECT().
			ClosePurchase(gomock.Any(), purchase.ID, s.employee).
			Return(purchase, nil)

		req := testutil.NewRequest(s.T(), http.MethodPost, "/purchases/"+purchase.ID.String()+"/close")
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchase.ID.String())

		w := httptest.NewRecorder()
		handler.handleClosePurchase(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusOK)
		closed := testutil.UnmarshalResponse[models.Purchase](s.T(), w)
		s.True(closed.Closed)
	})
}

func (s *LedgerHandlerSuite) TestHandleItemRoutes() {
	s.Run("updates an item quantity", func() {
		handler, mockService := newTestHandler(s.T())
		purchaseID := id.NewPurchaseID()
		itemID := id.NewItemID()
		item := &models.PurchaseItem{ID: itemID, PurchaseID: purchaseID, Quantity: 2}
		mockService.EXPECT().
			UpdateItem(gomock.Any(), purchaseID, itemID, 2, s.employee).
			Return(item, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPatch,
			"/purchases/"+purchaseID.String()+"/items/"+itemID.String(),
			map[string]any{"quantity": 2})
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchaseID.String(), "itemID", itemID.String())

		w := httptest.NewRecorder()
		handler.handleUpdateItem(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusOK)
	})

	s.Run("removes an item with 204", func() {
		handler, mockService := newTestHandler(s.T())
		purchaseID := id.NewPurchaseID()
		itemID := id.NewItemID()
		mockService.EXPECT().
			RemoveItem(gomock.Any(), purchaseID, itemID, s.employee).
			Return(nil)

		req := testutil.NewRequest(s.T(), http.MethodDelete,
			"/purchases/"+purchaseID.String()+"/items/"+itemID.String())
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchaseID.String(), "itemID", itemID.String())

		w := httptest.NewRecorder()
		handler.handleRemoveItem(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusNoContent)
	})

	s.Run("translates a closed-purchase rejection to 409", func() {
		handler, mockService := newTestHandler(s.T())
		purchaseID := id.NewPurchaseID()
		mockService.EXPECT().
			AddItems(gomock.Any(), purchaseID, gomock.Any(), s.employee).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "cannot modify closed purchase"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/purchases/"+purchaseID.String()+"/items",
			map[string]any{"items": []map[string]any{{"productId": id.NewProductID().String(), "quantity": 1}}})
		req = testutil.WithActor(req, s.employee)
		req = withRouteParams(req, "purchaseID", purchaseID.String())

		w := httptest.NewRecorder()
		handler.handleAddItems(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *LedgerHandlerSuite) TestHandleListPurchases() {
	s.Run("passes parsed filters through", func() {
		handler, mockService := newTestHandler(s.T())
		employeeID := id.NewEmployeeID()
		mockService.EXPECT().
			ListPurchases(gomock.Any(), gomock.Any(), models.Pagination{Page: 2, PerPage: 10}, s.admin).
			DoAndReturn(func(_ context.Context, filter models.ListFilter, _ models.Pagination, _ id.Actor) (*models.PurchasePage, error) {
				s.Require().NotNil(filter.EmployeeID)
				s.Equal(employeeID, *filter.EmployeeID)
				s.Require().NotNil(filter.Closed)
				s.True(*filter.Closed)
				return &models.PurchasePage{Data: []*models.Purchase{}}, nil
			})

		req := testutil.NewRequest(s.T(), http.MethodGet,
			"/purchases?employeeId="+employeeID.String()+"&closed=true&page=2&perPage=10")
		req = testutil.WithActor(req, s.admin)

		w := httptest.NewRecorder()
		handler.handleListPurchases(w, req)

		testutil.AssertStatus(s.T(), w, http.StatusOK)
	})

	s.Run("rejects a malformed closed flag", func() {
		handler, _ := newTestHandler(s.T())
		req := testutil.NewRequest(s.T(), http.MethodGet, "/purchases?closed=sideways")
		req = testutil.WithActor(req, s.admin)

		w := httptest.NewRecorder()
		handler.handleListPurchases(w, req)

		testutil.AssertStatusAndError(s.T(), w, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}
