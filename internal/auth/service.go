package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/telemim/telemim-ops/internal/shared"
	"github.com/telemim/telemim-ops/internal/staff"
)

// StaffDirectory resolves employees for authentication.
type StaffDirectory interface {
	FindByEmail(ctx context.Context, email string) (*staff.Employee, error)
	Get(ctx context.Context, id int64) (*staff.Employee, error)
}

// SessionRegistry persists session metadata alongside the Redis copy.
type SessionRegistry interface {
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// Service wraps authentication business rules.
type Service struct {
	directory StaffDirectory
	sessions  SessionRegistry
}

// NewService constructs a new Service.
func NewService(directory StaffDirectory, sessions SessionRegistry) *Service {
	return &Service{directory: directory, sessions: sessions}
}

// Authenticate validates email/password credentials. Inactive employees
// cannot log in regardless of the password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*staff.Employee, error) {
	employee, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if employee.Status == staff.StatusInactive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return employee, nil
}

// LoadActor resolves a session user ID into an Actor for request context.
func (s *Service) LoadActor(ctx context.Context, id int64) (shared.Actor, bool, error) {
	employee, err := s.directory.Get(ctx, id)
	if err != nil {
		return shared.Actor{}, false, nil
	}
	if employee.Status == staff.StatusInactive {
		return shared.Actor{}, false, nil
	}
	return shared.Actor{ID: employee.ID, Name: employee.Name, Role: employee.Role}, true, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.sessions.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}
