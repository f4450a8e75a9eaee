package helpers

import "time"

// Helper represents a day-labor helper hired for moves.
type Helper struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	PixKey    *string   `json:"pix_key,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attendance marks a helper present on a work date. One row per
// (date, helper); repeated submissions overwrite the existing mark.
type Attendance struct {
	ID         int64     `json:"id"`
	HelperID   int64     `json:"helper_id"`
	HelperName string    `json:"helper_name,omitempty"`
	WorkDate   time.Time `json:"work_date"`
	Present    bool      `json:"present"`
	RecordedBy int64     `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CreateHelperRequest registers a helper.
type CreateHelperRequest struct {
	Name   string  `json:"name" validate:"required,min=2,max=200"`
	PixKey *string `json:"pix_key,omitempty" validate:"omitempty,max=140"`
}

// UpdateHelperRequest is a partial helper update.
type UpdateHelperRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	PixKey *string `json:"pix_key,omitempty" validate:"omitempty,max=140"`
	Active *bool   `json:"active,omitempty"`
}

// MarkAttendanceRequest upserts an attendance mark.
type MarkAttendanceRequest struct {
	HelperID int64  `json:"helper_id" validate:"required,gt=0"`
	WorkDate string `json:"work_date" validate:"required,datetime=2006-01-02"`
	Present  bool   `json:"present"`
}
