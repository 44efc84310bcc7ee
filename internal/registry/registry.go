// Package registry manages the department directory: the list of
// organizational units that deposit or approve invoices.
package registry

import (
	"errors"
	"strings"

	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrNotPermitted is returned when a non-finance actor attempts a
	// registry mutation.
	ErrNotPermitted = errors.New("only the finance role may manage departments")
	// ErrProtected guards the two departments whose ids map directly
	// to roles: they cannot be deleted or renamed.
	ErrProtected  = errors.New("department is protected")
	ErrNotFound   = errors.New("department not found")
	ErrExists     = errors.New("department id already exists")
	ErrIncomplete = errors.New("name, designation and secret are required")
)

func protected(id string) bool {
	return id == models.DeptFinance || id == models.DeptProcurement
}

// Service exposes department CRUD, gated to the finance role.
type Service struct {
	repo   *repository.DepartmentRepository
	logger *zap.Logger
}

// NewService creates a new registry service
func NewService(repo *repository.DepartmentRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns every registered department.
func (s *Service) List() ([]models.Department, error) {
	return s.repo.List()
}

// Get returns one department or ErrNotFound.
func (s *Service) Get(id string) (*models.Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrNotFound
	}
	return dept, nil
}

// Add registers a new department. The id is derived from the name,
// uppercased with spaces stripped.
func (s *Service) Add(name, designation, secret string, actor models.CurrentUser) (*models.Department, error) {
	if actor.Role != models.RoleFinance {
		return nil, ErrNotPermitted
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(designation) == "" || secret == "" {
		return nil, ErrIncomplete
	}

	dept := &models.Department{
		ID:          strings.ToUpper(strings.ReplaceAll(name, " ", "")),
		Name:        name,
		Designation: designation,
		Secret:      secret,
	}

	existing, err := s.repo.GetByID(dept.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrExists
	}

	if err := s.repo.Create(nil, dept); err != nil {
		return nil, err
	}

	s.logger.Info("Department added", zap.String("id", dept.ID))
	return dept, nil
}

// Update edits a department. Protected departments accept only a
// secret change; their id, name and designation are frozen.
func (s *Service) Update(id, name, designation, secret string, actor models.CurrentUser) (*models.Department, error) {
	if actor.Role != models.RoleFinance {
		return nil, ErrNotPermitted
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrNotFound
	}

	if protected(id) && (name != dept.Name || designation != dept.Designation) {
		return nil, ErrProtected
	}

	if strings.TrimSpace(name) == "" || strings.TrimSpace(designation) == "" || secret == "" {
		return nil, ErrIncomplete
	}

	dept.Name = name
	dept.Designation = designation
	dept.Secret = secret

	if err := s.repo.Update(nil, dept); err != nil {
		return nil, err
	}

	s.logger.Info("Department updated", zap.String("id", id))
	return dept, nil
}

// Delete removes a department. Deleting a protected department is
// refused.
func (s *Service) Delete(id string, actor models.CurrentUser) error {
	if actor.Role != models.RoleFinance {
		return ErrNotPermitted
	}
	if protected(id) {
		return ErrProtected
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if dept == nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(nil, id); err != nil {
		return err
	}

	s.logger.Info("Department deleted", zap.String("id", id))
	return nil
}
