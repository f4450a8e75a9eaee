package residents

import "time"

// Resident represents a person served by the moving operation.
type Resident struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Unit      *string   `json:"unit,omitempty"`
	Tower     *string   `json:"tower,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateResidentRequest represents a request to register a resident.
type CreateResidentRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Unit  *string `json:"unit,omitempty" validate:"omitempty,max=50"`
	Tower *string `json:"tower,omitempty" validate:"omitempty,max=50"`
	Notes *string `json:"notes,omitempty"`
}

// UpdateResidentRequest represents a partial resident update.
type UpdateResidentRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Unit  *string `json:"unit,omitempty" validate:"omitempty,max=50"`
	Tower *string `json:"tower,omitempty" validate:"omitempty,max=50"`
	Notes *string `json:"notes,omitempty"`
}
