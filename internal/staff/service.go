package staff

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo abstracts employee persistence for the service.
type Repo interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, e Employee) (*Employee, error)
	Update(ctx context.Context, e Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
}

// Auditor records performed actions.
type Auditor interface {
	Record(ctx context.Context, actor shared.Actor, action, details string) error
}

// Service wraps employee management rules.
type Service struct {
	repo  Repo
	audit Auditor
}

// NewService constructs a staff service.
func NewService(repo Repo, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get returns the employee, restricted to staff managers.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (*Employee, error) {
	if !actor.Can(shared.CapManageStaff) {
		return nil, shared.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// List returns every employee, restricted to staff managers.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Employee, error) {
	if !actor.Can(shared.CapManageStaff) {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx)
}

// Create registers a new employee with a hashed password.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateEmployeeRequest) (*Employee, error) {
	if !actor.Can(shared.CapManageStaff) {
		return nil, shared.ErrForbidden
	}
	if !req.Role.IsValid() {
		return nil, shared.Refuse("cargo desconhecido: %s", req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.repo.Create(ctx, Employee{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Status:        StatusActive,
		Phone:         req.Phone,
		AdmissionDate: req.AdmissionDate,
		PasswordHash:  string(hash),
	})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "CRIAR_FUNCIONARIO", fmt.Sprintf("Funcionário %s (%s)", created.Name, created.Role))
	return created, nil
}

// Update applies a partial employee update.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateEmployeeRequest) (*Employee, error) {
	if !actor.Can(shared.CapManageStaff) {
		return nil, shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, shared.Refuse("cargo desconhecido: %s", *req.Role)
		}
		existing.Role = *req.Role
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, shared.Refuse("status desconhecido: %s", *req.Status)
		}
		existing.Status = *req.Status
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.AdmissionDate != nil {
		existing.AdmissionDate = req.AdmissionDate
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "EDITAR_FUNCIONARIO", fmt.Sprintf("Funcionário %s", updated.Name))
	return updated, nil
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	if !actor.Can(shared.CapManageStaff) {
		return shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ID == actor.ID {
		return shared.Refuse("não é possível remover a própria conta")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, actor, "EXCLUIR_FUNCIONARIO", fmt.Sprintf("Funcionário %s", existing.Name))
	return nil
}
