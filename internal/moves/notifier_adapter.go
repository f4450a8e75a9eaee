package moves

import (
	"context"

	"github.com/telemim/telemim-ops/internal/notify"
	"github.com/telemim/telemim-ops/internal/shared"
)

// NotifyAdapter bridges the notification service into the Notifier interface.
type NotifyAdapter struct {
	Service *notify.Service
}

// NotifyUser delivers an informational notification to one employee.
func (a NotifyAdapter) NotifyUser(ctx context.Context, userID int64, title, message string) {
	a.Service.NotifyUser(ctx, userID, title, message, notify.KindInfo)
}

// NotifyRole delivers an informational notification to a whole role.
func (a NotifyAdapter) NotifyRole(ctx context.Context, role shared.Role, title, message string) {
	a.Service.NotifyRole(ctx, role, title, message, notify.KindInfo)
}
