package audit

import (
	"context"

	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
)

// Service exposes the read side of the trail. Listing is admin-only: the
// trail reveals every user's activity, so no ownership scoping can make it
// safe for lower roles.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List pages through records matching the filter, newest-first.
func (s *Service) List(ctx context.Context, filter Filter, page Pagination, actor id.Actor) (*Page, error) {
	if actor.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "audit trail is restricted to administrators")
	}

	page = page.Normalize()
	records, total, err := s.store.List(ctx, filter, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit records")
	}
	if records == nil {
		records = []Record{}
	}
	return &Page{
		Data: records,
		Meta: Meta{Page: page.Page, PerPage: page.PerPage, Total: total},
	}, nil
}
