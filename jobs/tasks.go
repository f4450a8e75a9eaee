package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRetentionSweep prunes expired operational data.
	TaskRetentionSweep = "maintenance:retention_sweep"
	// TaskAssignmentReminder nudges crews with unanswered slots.
	TaskAssignmentReminder = "moves:assignment_reminder"
)

// RetentionSweepPayload bounds what the sweep removes.
type RetentionSweepPayload struct {
	HorizonHours int `json:"horizon_hours"`
}

// NewRetentionSweepTask constructs an Asynq task.
func NewRetentionSweepTask(horizonHours int) (*asynq.Task, error) {
	data, err := json.Marshal(RetentionSweepPayload{HorizonHours: horizonHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetentionSweep, data), nil
}

// AssignmentReminderPayload selects which day's moves get reminders.
type AssignmentReminderPayload struct {
	DaysAhead int `json:"days_ahead"`
}

// NewAssignmentReminderTask constructs an Asynq task.
func NewAssignmentReminderTask(daysAhead int) (*asynq.Task, error) {
	data, err := json.Marshal(AssignmentReminderPayload{DaysAhead: daysAhead})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentReminder, data), nil
}
