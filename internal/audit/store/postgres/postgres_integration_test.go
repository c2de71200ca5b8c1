//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tally/internal/audit"
	"tally/internal/audit/store/postgres"
	id "tally/pkg/domain"
	"tally/pkg/testutil/containers"
)

type PostgresAuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditStoreSuite))
}

func (s *PostgresAuditStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresAuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background()))
}

func newRecord(userID *id.UserID, action audit.Action, resource, resourceID string, at time.Time) audit.Record {
	return audit.Record{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		RequestID:  "req-" + resourceID,
		Timestamp:  at,
	}
}

func (s *PostgresAuditStoreSuite) TestAppendRoundTrip() {
	ctx := context.Background()
	userID := id.NewUserID()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	record := newRecord(&userID, audit.ActionUpdate, audit.ResourcePurchase, "p-1", at)
	record.OldValue = json.RawMessage(`{"total":"75.00"}`)
	record.NewValue = json.RawMessage(`{"total":"95.00"}`)
	s.Require().NoError(s.store.Append(ctx, record))

	records, total, err := s.store.List(ctx, audit.Filter{}, audit.Pagination{Page: 1, PerPage: 20})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(records, 1)

	got := records[0]
	s.Equal(record.ID, got.ID)
	s.Require().NotNil(got.UserID)
	s.Equal(userID, *got.UserID)
	s.Equal(audit.ActionUpdate, got.Action)
	s.Equal(audit.ResourcePurchase, got.Resource)
	s.Require().NotNil(got.ResourceID)
	s.Equal("p-1", *got.ResourceID)
	s.JSONEq(`{"total":"75.00"}`, string(got.OldValue))
	s.JSONEq(`{"total":"95.00"}`, string(got.NewValue))
	s.Equal("req-p-1", got.RequestID)
	s.True(got.Timestamp.Equal(at))
}

func (s *PostgresAuditStoreSuite) TestAppend_NilOwnerAndSnapshots() {
	ctx := context.Background()
	record := newRecord(nil, audit.ActionDelete, audit.ResourcePurchase, "p-2", time.Now().UTC())
	s.Require().NoError(s.store.Append(ctx, record))

	records, _, err := s.store.List(ctx, audit.Filter{}, audit.Pagination{Page: 1, PerPage: 20})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].UserID)
	s.Nil(records[0].OldValue)
	s.Nil(records[0].NewValue)
}

func (s *PostgresAuditStoreSuite) TestList_NewestFirst() {
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	userID := id.NewUserID()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		record := newRecord(&userID, audit.ActionCreate, audit.ResourcePurchase, "p-1", base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Append(ctx, record))
		ids = append(ids, record.ID)
	}

	records, total, err := s.store.List(ctx, audit.Filter{}, audit.Pagination{Page: 1, PerPage: 20})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(records, 3)
	s.Equal(ids[2], records[0].ID)
	s.Equal(ids[0], records[2].ID)
}

func (s *PostgresAuditStoreSuite) TestList_Filters() {
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	alice := id.NewUserID()
	bob := id.NewUserID()

	s.Require().NoError(s.store.Append(ctx, newRecord(&alice, audit.ActionCreate, audit.ResourcePurchase, "p-1", base)))
	s.Require().NoError(s.store.Append(ctx, newRecord(&alice, audit.ActionUpdate, audit.ResourcePurchase, "p-1", base.Add(time.Minute))))
	s.Require().NoError(s.store.Append(ctx, newRecord(&bob, audit.ActionUpdate, audit.ResourcePurchaseItem, "i-1", base.Add(2*time.Minute))))
	s.Require().NoError(s.store.Append(ctx, newRecord(&bob, audit.ActionDelete, audit.ResourcePurchase, "p-2", base.Add(time.Hour))))

	s.Run("by user", func() {
		records, total, err := s.store.List(ctx, audit.Filter{UserID: &alice}, audit.Pagination{Page: 1, PerPage: 20})
		s.Require().NoError(err)
		s.Equal(2, total)
		for _, record := range records {
			s.Equal(alice, *record.UserID)
		}
	})

	s.Run("by resource and id", func() {
		resource := audit.ResourcePurchase
		resourceID := "p-1"
		_, total, err := s.store.List(ctx,
			audit.Filter{Resource: &resource, ResourceID: &resourceID},
			audit.Pagination{Page: 1, PerPage: 20})
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("by action", func() {
		action := audit.ActionUpdate
		_, total, err := s.store.List(ctx, audit.Filter{Action: &action}, audit.Pagination{Page: 1, PerPage: 20})
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("time window", func() {
		from := base.Add(time.Minute)
		to := base.Add(10 * time.Minute)
		_, total, err := s.store.List(ctx, audit.Filter{From: &from, To: &to}, audit.Pagination{Page: 1, PerPage: 20})
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("pagination keeps the full count", func() {
		records, total, err := s.store.List(ctx, audit.Filter{}, audit.Pagination{Page: 2, PerPage: 3})
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Len(records, 1)
	})
}
