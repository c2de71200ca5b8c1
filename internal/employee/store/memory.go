// Package store provides employee lookups with memory and postgres variants.
package store

import (
	"context"
	"sync"

	"tally/internal/employee/models"
	id "tally/pkg/domain"
	"tally/pkg/platform/sentinel"
)

type InMemory struct {
	mu        sync.RWMutex
	employees map[id.EmployeeID]models.Employee
}

func NewInMemory() *InMemory {
	return &InMemory{employees: make(map[id.EmployeeID]models.Employee)}
}

// Seed inserts or replaces an employee. Test and bootstrap helper.
func (s *InMemory) Seed(employee models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[employee.ID] = employee
}

func (s *InMemory) FindByID(_ context.Context, employeeID id.EmployeeID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if employee, ok := s.employees[employeeID]; ok {
		copied := employee
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
