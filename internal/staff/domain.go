package staff

import (
	"time"

	"github.com/telemim/telemim-ops/internal/shared"
)

// EmployeeStatus tracks availability of an employee.
type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "Ativo"
	StatusVacation EmployeeStatus = "Férias"
	StatusInactive EmployeeStatus = "Inativo"
)

// IsValid checks if the status is a known value.
func (s EmployeeStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusVacation, StatusInactive:
		return true
	default:
		return false
	}
}

// Employee represents a staff member able to log into the system.
type Employee struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          shared.Role    `json:"role"`
	Status        EmployeeStatus `json:"status"`
	Phone         *string        `json:"phone,omitempty"`
	AdmissionDate *time.Time     `json:"admission_date,omitempty"`
	PasswordHash  string         `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateEmployeeRequest represents a request to register an employee.
type CreateEmployeeRequest struct {
	Name          string      `json:"name" validate:"required,min=2,max=200"`
	Email         string      `json:"email" validate:"required,email"`
	Password      string      `json:"password" validate:"required,min=8"`
	Role          shared.Role `json:"role" validate:"required"`
	Phone         *string     `json:"phone,omitempty" validate:"omitempty,max=30"`
	AdmissionDate *time.Time  `json:"admission_date,omitempty"`
}

// UpdateEmployeeRequest represents a partial employee update.
type UpdateEmployeeRequest struct {
	Name          *string         `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Email         *string         `json:"email,omitempty" validate:"omitempty,email"`
	Password      *string         `json:"password,omitempty" validate:"omitempty,min=8"`
	Role          *shared.Role    `json:"role,omitempty"`
	Status        *EmployeeStatus `json:"status,omitempty"`
	Phone         *string         `json:"phone,omitempty" validate:"omitempty,max=30"`
	AdmissionDate *time.Time      `json:"admission_date,omitempty"`
}
