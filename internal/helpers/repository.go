package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for helpers and attendance.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const helperColumns = `id, name, pix_key, active, created_at, updated_at`

func scanHelper(row pgx.Row) (*Helper, error) {
	var h Helper
	err := row.Scan(&h.ID, &h.Name, &h.PixKey, &h.Active, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// Get retrieves a helper by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Helper, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+helperColumns+` FROM helpers WHERE id = $1`, id)
	return scanHelper(row)
}

// List returns all helpers ordered by name.
func (r *Repository) List(ctx context.Context) ([]Helper, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+helperColumns+` FROM helpers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Helper
	for rows.Next() {
		var h Helper
		if err := rows.Scan(&h.ID, &h.Name, &h.PixKey, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// Create inserts a helper.
func (r *Repository) Create(ctx context.Context, h Helper) (*Helper, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO helpers (name, pix_key, active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		RETURNING `+helperColumns,
		h.Name, h.PixKey)
	return scanHelper(row)
}

// Update persists helper fields.
func (r *Repository) Update(ctx context.Context, h Helper) (*Helper, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE helpers
		SET name = $2, pix_key = $3, active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+helperColumns,
		h.ID, h.Name, h.PixKey, h.Active)
	return scanHelper(row)
}

// UpsertAttendance writes an attendance mark keyed on (work_date, helper_id).
func (r *Repository) UpsertAttendance(ctx context.Context, a Attendance) (*Attendance, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO helper_attendance (helper_id, work_date, present, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (work_date, helper_id)
		DO UPDATE SET present = EXCLUDED.present, recorded_by = EXCLUDED.recorded_by, recorded_at = NOW()
		RETURNING id, helper_id, work_date, present, recorded_by, recorded_at`,
		a.HelperID, a.WorkDate, a.Present, a.RecordedBy)
	var stored Attendance
	if err := row.Scan(&stored.ID, &stored.HelperID, &stored.WorkDate, &stored.Present, &stored.RecordedBy, &stored.RecordedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

// AttendanceByDate lists marks for a work date with helper names.
func (r *Repository) AttendanceByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.helper_id, h.name, a.work_date, a.present, a.recorded_by, a.recorded_at
		FROM helper_attendance a
		JOIN helpers h ON h.id = a.helper_id
		WHERE a.work_date = $1
		ORDER BY h.name`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.HelperID, &a.HelperName, &a.WorkDate, &a.Present, &a.RecordedBy, &a.RecordedAt); err != nil {
			return nil, err
		}
		marks = append(marks, a)
	}
	return marks, rows.Err()
}

// AttendanceSummary counts present marks per helper inside a date range.
func (r *Repository) AttendanceSummary(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.name, COUNT(*)
		FROM helper_attendance a
		JOIN helpers h ON h.id = a.helper_id
		WHERE a.present AND a.work_date BETWEEN $1 AND $2
		GROUP BY h.name`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		summary[name] = count
	}
	return summary, rows.Err()
}
