package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a notification.
func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (user_id, title, message, kind, read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())`,
		n.UserID, n.Title, n.Message, n.Kind)
	return err
}

// ListForUser returns notifications for one employee, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, message, kind, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags one notification as read, scoped to its owner.
func (r *Repository) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every notification of the employee as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	return err
}

// IDsByRole returns IDs of active employees holding the role.
func (r *Repository) IDsByRole(ctx context.Context, role shared.Role) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM employees WHERE role = $1 AND status = 'Ativo'`, role)
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

// Cleanup removes read notifications older than the retention horizon.
func (r *Repository) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE read AND created_at < $1`, cutoff)
	return err
}
