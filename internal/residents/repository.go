package residents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for residents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const residentColumns = `id, name, phone, unit, tower, notes, created_at, updated_at`

func scanResident(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(&res.ID, &res.Name, &res.Phone, &res.Unit, &res.Tower, &res.Notes, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Get retrieves a resident by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Resident, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+residentColumns+` FROM residents WHERE id = $1`, id)
	return scanResident(row)
}

// List returns all residents.
func (r *Repository) List(ctx context.Context) ([]Resident, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+residentColumns+` FROM residents ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var residents []Resident
	for rows.Next() {
		var res Resident
		if err := rows.Scan(&res.ID, &res.Name, &res.Phone, &res.Unit, &res.Tower, &res.Notes, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		residents = append(residents, res)
	}
	return residents, rows.Err()
}

// ExistsByName reports whether a resident with the name exists, ignoring case.
func (r *Repository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM residents WHERE lower(name) = lower($1) AND id <> $2)`,
		name, excludeID).Scan(&exists)
	return exists, err
}

// HasMoves reports whether any move references the resident.
func (r *Repository) HasMoves(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM moves WHERE resident_id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts a resident and returns the stored row.
func (r *Repository) Create(ctx context.Context, res Resident) (*Resident, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO residents (name, phone, unit, tower, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+residentColumns,
		res.Name, res.Phone, res.Unit, res.Tower, res.Notes)
	return scanResident(row)
}

// Update persists resident fields.
func (r *Repository) Update(ctx context.Context, res Resident) (*Resident, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE residents
		SET name = $2, phone = $3, unit = $4, tower = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+residentColumns,
		res.ID, res.Name, res.Phone, res.Unit, res.Tower, res.Notes)
	return scanResident(row)
}

// Delete removes a resident.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM residents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
