package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LogEntry represents a record stored in logs.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogger writes action records into logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, actor Actor, action, details string) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if action == "" {
		return errors.New("audit log requires an action")
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO logs (user_id, user_name, action, details, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		actor.ID, actor.Name, action, details)
	return err
}

// Recent returns the newest entries, capped at limit.
func (l *AuditLogger) Recent(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, user_id, user_name, action, details, created_at FROM logs ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup removes entries older than retention.
func (l *AuditLogger) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if l == nil {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	_, err := l.pool.Exec(ctx, `DELETE FROM logs WHERE created_at < $1`, cutoff)
	return err
}
