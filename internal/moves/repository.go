package moves

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for moves.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const moveColumns = `m.id, m.resident_id, r.name, m.origin, m.destination, m.move_date, m.move_time,
	m.status, m.items_volume, m.estimated_cost_cents, m.coordinator_id, m.supervisor_id,
	m.driver_id, m.van_id, m.driver_confirmation, m.van_confirmation,
	m.volume_validation_status, m.corrected_volume, m.validation_notes, m.notes,
	m.created_by, m.created_at, m.updated_at`

func scanMove(row pgx.Row) (*Move, error) {
	var m Move
	err := row.Scan(&m.ID, &m.ResidentID, &m.ResidentName, &m.Origin, &m.Destination,
		&m.MoveDate, &m.MoveTime, &m.Status, &m.ItemsVolume, &m.EstimatedCostCents,
		&m.CoordinatorID, &m.SupervisorID, &m.DriverID, &m.VanID,
		&m.DriverConfirmation, &m.VanConfirmation, &m.VolumeValidation,
		&m.CorrectedVolume, &m.ValidationNotes, &m.Notes,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Get retrieves a move by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Move, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+moveColumns+`
		FROM moves m JOIN residents r ON r.id = m.resident_id
		WHERE m.id = $1`, id)
	return scanMove(row)
}

// List returns moves matching the filter, newest date first.
func (r *Repository) List(ctx context.Context, req ListMovesRequest) ([]Move, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if req.Status != nil {
		add("m.status = $%d", *req.Status)
	}
	if req.DateFrom != nil {
		add("m.move_date >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		add("m.move_date <= $%d", *req.DateTo)
	}
	if req.StaffID != nil {
		args = append(args, *req.StaffID)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(m.coordinator_id = $%d OR m.supervisor_id = $%d OR m.driver_id = $%d OR m.van_id = $%d)", n, n, n, n))
	}

	query := `SELECT ` + moveColumns + ` FROM moves m JOIN residents r ON r.id = m.resident_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.move_date DESC, m.id DESC"
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, req.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.ID, &m.ResidentID, &m.ResidentName, &m.Origin, &m.Destination,
			&m.MoveDate, &m.MoveTime, &m.Status, &m.ItemsVolume, &m.EstimatedCostCents,
			&m.CoordinatorID, &m.SupervisorID, &m.DriverID, &m.VanID,
			&m.DriverConfirmation, &m.VanConfirmation, &m.VolumeValidation,
			&m.CorrectedVolume, &m.ValidationNotes, &m.Notes,
			&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create inserts a move and returns its ID.
func (r *Repository) Create(ctx context.Context, m Move) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO moves (resident_id, origin, destination, move_date, move_time, status,
			items_volume, estimated_cost_cents, coordinator_id, supervisor_id, driver_id, van_id,
			driver_confirmation, van_confirmation, volume_validation_status, notes,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id`,
		m.ResidentID, m.Origin, m.Destination, m.MoveDate, m.MoveTime, m.Status,
		m.ItemsVolume, m.EstimatedCostCents, m.CoordinatorID, m.SupervisorID, m.DriverID, m.VanID,
		m.DriverConfirmation, m.VanConfirmation, m.VolumeValidation, m.Notes, m.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update persists mutable move fields.
func (r *Repository) Update(ctx context.Context, m Move) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE moves
		SET origin = $2, destination = $3, move_date = $4, move_time = $5,
			estimated_cost_cents = $6, coordinator_id = $7, supervisor_id = $8,
			driver_id = $9, van_id = $10, notes = $11, updated_at = NOW()
		WHERE id = $1`,
		m.ID, m.Origin, m.Destination, m.MoveDate, m.MoveTime,
		m.EstimatedCostCents, m.CoordinatorID, m.SupervisorID, m.DriverID, m.VanID, m.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStatus updates the lifecycle status.
func (r *Repository) SetStatus(ctx context.Context, id int64, status MoveStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE moves SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetVolume updates the measured volume.
func (r *Repository) SetVolume(ctx context.Context, id int64, volume float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE moves SET items_volume = $2, updated_at = NOW() WHERE id = $1`, id, volume)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetVolumeValidation writes the validation outcome.
func (r *Repository) SetVolumeValidation(ctx context.Context, id int64, status VolumeValidation, correctedVolume *float64, notes *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE moves
		SET volume_validation_status = $2, corrected_volume = $3, validation_notes = $4, updated_at = NOW()
		WHERE id = $1`, id, status, correctedVolume, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetAssignmentStatus updates the driver or van confirmation column.
func (r *Repository) SetAssignmentStatus(ctx context.Context, id int64, role AssignmentRole, status AssignmentStatus) error {
	column := "driver_confirmation"
	if role == AssignmentRoleVan {
		column = "van_confirmation"
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE moves SET `+column+` = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus aggregates moves per lifecycle status.
func (r *Repository) CountByStatus(ctx context.Context) (map[MoveStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM moves GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[MoveStatus]int)
	for rows.Next() {
		var status MoveStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// CountOnDate counts moves scheduled for a given day.
func (r *Repository) CountOnDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM moves WHERE move_date = $1`, date).Scan(&count)
	return count, err
}
