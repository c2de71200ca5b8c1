//go:build integration

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	catalogstore "tally/internal/catalog/store"
	employeestore "tally/internal/employee/store"
	"tally/internal/ledger/models"
	"tally/internal/ledger/service"
	ledgerpostgres "tally/internal/ledger/store/postgres"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
	"tally/pkg/testutil/containers"
)

// Exercises the write pipeline against real transactions: the closed-state
// check happens under the row lock, so two racing mutations must serialize
// into exactly one winner instead of both observing the purchase open.
type ServiceConcurrencySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	service  *service.Service

	employeeID id.EmployeeID
	productID  id.ProductID
	admin      id.Actor
}

func TestServiceConcurrencySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ServiceConcurrencySuite))
}

func (s *ServiceConcurrencySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.service = service.New(
		ledgerpostgres.New(s.postgres.DB),
		catalogstore.NewPostgres(s.postgres.DB),
		employeestore.NewPostgres(s.postgres.DB),
		ledgerpostgres.NewTxRunner(s.postgres.DB),
		nil,
	)
}

func (s *ServiceConcurrencySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx))

	s.employeeID = id.NewEmployeeID()
	_, err := s.postgres.DB.Exec(
		`INSERT INTO employees (id, name) VALUES ($1, $2)`,
		uuid.UUID(s.employeeID), "Alice")
	s.Require().NoError(err)

	s.productID = id.NewProductID()
	_, err = s.postgres.DB.Exec(
		`INSERT INTO products (id, name, price) VALUES ($1, $2, $3)`,
		uuid.UUID(s.productID), "Coffee", "25.00")
	s.Require().NoError(err)

	s.admin = id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}
}

func (s *ServiceConcurrencySuite) createPurchase() *models.Purchase {
	purchase, err := s.service.CreatePurchase(context.Background(),
		models.PurchaseAttrs{
			EmployeeID: s.employeeID,
			Date:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		[]models.ItemInput{{ProductID: s.productID, Quantity: 3}},
		s.admin)
	s.Require().NoError(err)
	return purchase
}

func (s *ServiceConcurrencySuite) TestConcurrentClose_ExactlyOneWins() {
	ctx := context.Background()
	purchase := s.createPurchase()

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = s.service.ClosePurchase(ctx, purchase.ID, s.admin)
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState),
			"loser must observe the committed close, got %v", err)
	}
	s.Equal(1, winners, "exactly one close may succeed")

	loaded, err := s.service.GetPurchase(ctx, purchase.ID, s.admin)
	s.Require().NoError(err)
	s.True(loaded.Closed)
}

func (s *ServiceConcurrencySuite) TestConcurrentCloseVersusAddItems() {
	ctx := context.Background()
	purchase := s.createPurchase()

	start := make(chan struct{})
	var wg sync.WaitGroup
	var closeErr, addErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, closeErr = s.service.ClosePurchase(ctx, purchase.ID, s.admin)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, addErr = s.service.AddItems(ctx, purchase.ID,
			[]models.ItemInput{{ProductID: s.productID, Quantity: 2}}, s.admin)
	}()
	close(start)
	wg.Wait()

	// The row lock serializes the pair into one of two legal histories:
	// the batch lands before the close, or the close wins and the batch is
	// rejected against the frozen aggregate.
	s.Require().NoError(closeErr, "the close always finds the purchase open or acquires the lock first")

	loaded, err := s.service.GetPurchase(ctx, purchase.ID, s.admin)
	s.Require().NoError(err)
	s.True(loaded.Closed)

	if addErr != nil {
		s.True(dErrors.HasCode(addErr, dErrors.CodeInvalidState))
		s.Len(loaded.Items, 1)
		s.True(loaded.Total.Equal(decimal.RequireFromString("75.00")))
	} else {
		s.Len(loaded.Items, 2)
		s.True(loaded.Total.Equal(decimal.RequireFromString("125.00")))
	}
}
