package audit

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps the trail in a slice. It favors clarity over
// performance and backs unit tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter, page Pagination) ([]Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Record
	for _, record := range s.records {
		if matches(record, filter) {
			matched = append(matched, record)
		}
	}

	// Newest first; ties keep append order reversed for determinism.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
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

func matches(record Record, filter Filter) bool {
	if filter.Resource != nil && record.Resource != *filter.Resource {
		return false
	}
	if filter.ResourceID != nil {
		if record.ResourceID == nil || *record.ResourceID != *filter.ResourceID {
			return false
		}
	}
	if filter.UserID != nil {
		if record.UserID == nil || *record.UserID != *filter.UserID {
			return false
		}
	}
	if filter.Action != nil && record.Action != *filter.Action {
		return false
	}
	if filter.From != nil && record.Timestamp.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.Timestamp.After(*filter.To) {
		return false
	}
	return true
}

// All returns every record in append order. Test helper.
func (s *InMemoryStore) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
