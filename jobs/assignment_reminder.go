package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/notify"
)

// MoveLister reads scheduled moves for a window.
type MoveLister interface {
	List(ctx context.Context, req moves.ListMovesRequest) ([]moves.Move, error)
}

// ReminderNotifier delivers reminder messages.
type ReminderNotifier interface {
	NotifyUser(ctx context.Context, userID int64, title, message string, kind notify.Kind)
}

// AssignmentReminderJob pings drivers and van operators who have not
// answered their slot on upcoming moves.
type AssignmentReminderJob struct {
	moves    MoveLister
	notifier ReminderNotifier
	logger   *slog.Logger
}

// NewAssignmentReminderJob constructs the reminder job.
func NewAssignmentReminderJob(lister MoveLister, notifier ReminderNotifier, logger *slog.Logger) *AssignmentReminderJob {
	return &AssignmentReminderJob{moves: lister, notifier: notifier, logger: logger}
}

// Handle processes TaskAssignmentReminder tasks.
func (j *AssignmentReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AssignmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	daysAhead := payload.DaysAhead
	if daysAhead <= 0 {
		daysAhead = 1
	}

	day := time.Now().UTC().AddDate(0, 0, daysAhead).Truncate(24 * time.Hour)
	dayEnd := day.Add(24*time.Hour - time.Second)

	pending, err := j.moves.List(ctx, moves.ListMovesRequest{DateFrom: &day, DateTo: &dayEnd})
	if err != nil {
		return fmt.Errorf("jobs: list upcoming moves: %w", err)
	}

	reminded := 0
	for _, m := range pending {
		message := fmt.Sprintf("A mudança #%d em %s às %s aguarda sua confirmação.",
			m.ID, m.MoveDate.Format("02/01/2006"), m.MoveTime)
		if m.DriverID != nil && m.DriverConfirmation == moves.AssignmentPending {
			j.notifier.NotifyUser(ctx, *m.DriverID, "Confirmação Pendente", message, notify.KindWarning)
			reminded++
		}
		if m.VanID != nil && m.VanConfirmation == moves.AssignmentPending {
			j.notifier.NotifyUser(ctx, *m.VanID, "Confirmação Pendente", message, notify.KindWarning)
			reminded++
		}
	}

	j.logger.Info("assignment reminders sent",
		slog.Time("day", day), slog.Int("count", reminded))
	return nil
}
