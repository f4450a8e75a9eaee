package notify

import (
	"context"
	"log/slog"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo abstracts notification persistence for the service.
type Repo interface {
	Insert(ctx context.Context, n Notification) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	IDsByRole(ctx context.Context, role shared.Role) ([]int64, error)
}

// Service creates and delivers notifications. Delivery is best-effort:
// a failed write is logged and never fails the calling workflow.
type Service struct {
	repo   Repo
	logger *slog.Logger
}

// NewService constructs a notification service.
func NewService(repo Repo, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// NotifyUser delivers one notification to one employee.
func (s *Service) NotifyUser(ctx context.Context, userID int64, title, message string, kind Kind) {
	if userID == 0 {
		return
	}
	err := s.repo.Insert(ctx, Notification{UserID: userID, Title: title, Message: message, Kind: kind})
	if err != nil {
		s.logger.Warn("notify user", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// NotifyRole delivers a notification to every active employee with the role.
func (s *Service) NotifyRole(ctx context.Context, role shared.Role, title, message string, kind Kind) {
	ids, err := s.repo.IDsByRole(ctx, role)
	if err != nil {
		s.logger.Warn("notify role", slog.String("role", string(role)), slog.Any("error", err))
		return
	}
	for _, id := range ids {
		s.NotifyUser(ctx, id, title, message, kind)
	}
}

// ListForUser returns the employee's notifications.
func (s *Service) ListForUser(ctx context.Context, actor shared.Actor, limit int) ([]Notification, error) {
	return s.repo.ListForUser(ctx, actor.ID, limit)
}

// MarkRead flags a notification read.
func (s *Service) MarkRead(ctx context.Context, actor shared.Actor, id int64) error {
	return s.repo.MarkRead(ctx, actor.ID, id)
}

// MarkAllRead flags all of the employee's notifications read.
func (s *Service) MarkAllRead(ctx context.Context, actor shared.Actor) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}
