package moves

import (
	"time"
)

// MoveStatus represents the lifecycle of a move order. Wire values are the
// Portuguese labels used across the company.
type MoveStatus string

const (
	StatusPending   MoveStatus = "Pendente"
	StatusApproved  MoveStatus = "Aprovado"
	StatusEnRoute   MoveStatus = "Em Rota"
	StatusCompleted MoveStatus = "Concluído"
)

// IsValid checks if the status is valid.
func (s MoveStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusEnRoute, StatusCompleted:
		return true
	default:
		return false
	}
}

// rank orders the lifecycle. Transitions must strictly increase rank;
// stage skips are allowed, regressions are not.
func (s MoveStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusApproved:
		return 1
	case StatusEnRoute:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

// CanAdvanceTo reports whether target is a forward transition.
func (s MoveStatus) CanAdvanceTo(target MoveStatus) bool {
	return target.IsValid() && target.rank() > s.rank()
}

// AssignmentStatus tracks driver/van acceptance of their slot on a move.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentDeclined  AssignmentStatus = "DECLINED"
)

// IsValid checks if the assignment status is valid.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentPending, AssignmentConfirmed, AssignmentDeclined:
		return true
	default:
		return false
	}
}

// VolumeValidation tracks the post-completion volume review.
type VolumeValidation string

const (
	VolumePending  VolumeValidation = "PENDING"
	VolumeApproved VolumeValidation = "APPROVED"
	VolumeRejected VolumeValidation = "REJECTED"
)

// AssignmentRole names the confirmable slots on a move.
type AssignmentRole string

const (
	AssignmentRoleDriver AssignmentRole = "driver"
	AssignmentRoleVan    AssignmentRole = "van"
)

// Move represents a scheduled residential move.
type Move struct {
	ID                 int64            `json:"id"`
	ResidentID         int64            `json:"resident_id"`
	ResidentName       string           `json:"resident_name,omitempty"`
	Origin             string           `json:"origin"`
	Destination        string           `json:"destination"`
	MoveDate           time.Time        `json:"move_date"`
	MoveTime           string           `json:"move_time"`
	Status             MoveStatus       `json:"status"`
	ItemsVolume        float64          `json:"items_volume"`
	EstimatedCostCents *int64           `json:"estimated_cost_cents,omitempty"`
	CoordinatorID      *int64           `json:"coordinator_id,omitempty"`
	SupervisorID       *int64           `json:"supervisor_id,omitempty"`
	DriverID           *int64           `json:"driver_id,omitempty"`
	VanID              *int64           `json:"van_id,omitempty"`
	DriverConfirmation AssignmentStatus `json:"driver_confirmation"`
	VanConfirmation    AssignmentStatus `json:"van_confirmation"`
	VolumeValidation   VolumeValidation `json:"volume_validation_status"`
	CorrectedVolume    *float64         `json:"corrected_volume,omitempty"`
	ValidationNotes    *string          `json:"validation_notes,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	CreatedBy          int64            `json:"created_by"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// AssignedStaff returns the IDs filled into the staff slots.
func (m *Move) AssignedStaff() []int64 {
	var ids []int64
	for _, p := range []*int64{m.CoordinatorID, m.SupervisorID, m.DriverID, m.VanID} {
		if p != nil && *p != 0 {
			ids = append(ids, *p)
		}
	}
	return ids
}

// HasFullCrew reports whether coordinator, supervisor and driver are assigned.
// The van slot is optional for approval.
func (m *Move) HasFullCrew() bool {
	return m.CoordinatorID != nil && *m.CoordinatorID != 0 &&
		m.SupervisorID != nil && *m.SupervisorID != 0 &&
		m.DriverID != nil && *m.DriverID != 0
}

// CreateMoveRequest represents a request to schedule a move.
type CreateMoveRequest struct {
	ResidentID         int64    `json:"resident_id" validate:"required,gt=0"`
	Origin             string   `json:"origin" validate:"required,max=300"`
	Destination        string   `json:"destination" validate:"required,max=300"`
	MoveDate           string   `json:"move_date" validate:"required,datetime=2006-01-02"`
	MoveTime           string   `json:"move_time" validate:"required,max=10"`
	ItemsVolume        float64  `json:"items_volume" validate:"gte=0"`
	EstimatedCostCents *int64   `json:"estimated_cost_cents,omitempty" validate:"omitempty,gte=0"`
	CoordinatorID      *int64   `json:"coordinator_id,omitempty" validate:"omitempty,gt=0"`
	SupervisorID       *int64   `json:"supervisor_id,omitempty" validate:"omitempty,gt=0"`
	DriverID           *int64   `json:"driver_id,omitempty" validate:"omitempty,gt=0"`
	VanID              *int64   `json:"van_id,omitempty" validate:"omitempty,gt=0"`
	Notes              *string  `json:"notes,omitempty"`
}

// UpdateMoveRequest represents a partial detail update.
type UpdateMoveRequest struct {
	Origin             *string  `json:"origin,omitempty" validate:"omitempty,max=300"`
	Destination        *string  `json:"destination,omitempty" validate:"omitempty,max=300"`
	MoveDate           *string  `json:"move_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MoveTime           *string  `json:"move_time,omitempty" validate:"omitempty,max=10"`
	EstimatedCostCents *int64   `json:"estimated_cost_cents,omitempty" validate:"omitempty,gte=0"`
	CoordinatorID      *int64   `json:"coordinator_id,omitempty"`
	SupervisorID       *int64   `json:"supervisor_id,omitempty"`
	DriverID           *int64   `json:"driver_id,omitempty"`
	VanID              *int64   `json:"van_id,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
}

// AdvanceStatusRequest asks for a lifecycle transition.
type AdvanceStatusRequest struct {
	Status MoveStatus `json:"status" validate:"required"`
}

// SetVolumeRequest updates the measured volume.
type SetVolumeRequest struct {
	ItemsVolume float64 `json:"items_volume"`
}

// ContestVolumeRequest disputes a completed move's volume.
type ContestVolumeRequest struct {
	CorrectedVolume float64 `json:"corrected_volume" validate:"gt=0"`
	Notes           string  `json:"notes" validate:"required,min=3,max=500"`
}

// ConfirmAssignmentRequest accepts or declines a staff slot.
type ConfirmAssignmentRequest struct {
	Role   AssignmentRole   `json:"role" validate:"required,oneof=driver van"`
	Status AssignmentStatus `json:"status" validate:"required,oneof=CONFIRMED DECLINED"`
}

// ListMovesRequest filters the move listing.
type ListMovesRequest struct {
	Status   *MoveStatus `json:"status,omitempty"`
	DateFrom *time.Time  `json:"date_from,omitempty"`
	DateTo   *time.Time  `json:"date_to,omitempty"`
	StaffID  *int64      `json:"staff_id,omitempty"`
	Limit    int         `json:"limit" validate:"gte=0,lte=500"`
	Offset   int         `json:"offset" validate:"gte=0"`
}
