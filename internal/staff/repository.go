package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for employees.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, name, email, role, status, phone, admission_date, password_hash, created_at, updated_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.Phone,
		&e.AdmissionDate, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Get retrieves an employee by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

// FindByEmail retrieves an employee by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`, email)
	return scanEmployee(row)
}

// List returns all employees ordered by name.
func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.Phone,
			&e.AdmissionDate, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// IDsByRole returns IDs of active employees holding the role.
func (r *Repository) IDsByRole(ctx context.Context, role shared.Role) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM employees WHERE role = $1 AND status = $2`, role, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts an employee and returns the stored row.
func (r *Repository) Create(ctx context.Context, e Employee) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (name, email, role, status, phone, admission_date, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+employeeColumns,
		e.Name, e.Email, e.Role, e.Status, e.Phone, e.AdmissionDate, e.PasswordHash)
	stored, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.Refuse("já existe um funcionário com o e-mail %s", e.Email)
		}
		return nil, err
	}
	return stored, nil
}

// Update persists mutable employee fields.
func (r *Repository) Update(ctx context.Context, e Employee) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE employees
		SET name = $2, email = $3, role = $4, status = $5, phone = $6,
		    admission_date = $7, password_hash = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING `+employeeColumns,
		e.ID, e.Name, e.Email, e.Role, e.Status, e.Phone, e.AdmissionDate, e.PasswordHash)
	return scanEmployee(row)
}

// Delete removes an employee.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
