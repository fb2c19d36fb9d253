package service

import (
	"context"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/repository"
)

// ReferenceService exposes the read-only lookup data used by ticket forms.
type ReferenceService struct {
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
}

// FormOptions groups the selectable references of the ticket form.
type FormOptions struct {
	Departments []domain.Department
	Rooms       []domain.Room
	Categories  []domain.Category
	Priorities  []domain.TicketPriority
}

// NewReferenceService constructs the service.
func NewReferenceService(departments repository.DepartmentRepository, categories repository.CategoryRepository) *ReferenceService {
	return &ReferenceService{departments: departments, categories: categories}
}

// FormOptions loads everything a ticket form offers.
func (s *ReferenceService) FormOptions(ctx context.Context) (*FormOptions, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.departments.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return &FormOptions{
		Departments: departments,
		Rooms:       rooms,
		Categories:  categories,
		Priorities:  domain.TicketPriorities,
	}, nil
}
