package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemim/telemim-ops/internal/shared"
)

type mockRepository struct {
	inserted    []Notification
	roleMembers map[shared.Role][]int64

	insertError error
	roleError   error
}

func (m *mockRepository) Insert(_ context.Context, n Notification) error {
	if m.insertError != nil {
		return m.insertError
	}
	m.inserted = append(m.inserted, n)
	return nil
}

func (m *mockRepository) ListForUser(_ context.Context, userID int64, _ int) ([]Notification, error) {
	out := make([]Notification, 0)
	for _, n := range m.inserted {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepository) MarkRead(_ context.Context, userID, id int64) error {
	for i, n := range m.inserted {
		if n.ID == id && n.UserID == userID {
			m.inserted[i].Read = true
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *mockRepository) MarkAllRead(_ context.Context, userID int64) error {
	for i, n := range m.inserted {
		if n.UserID == userID {
			m.inserted[i].Read = true
		}
	}
	return nil
}

func (m *mockRepository) IDsByRole(_ context.Context, role shared.Role) ([]int64, error) {
	if m.roleError != nil {
		return nil, m.roleError
	}
	return m.roleMembers[role], nil
}

func TestNotifyRoleFansOut(t *testing.T) {
	repo := &mockRepository{roleMembers: map[shared.Role][]int64{
		shared.RoleCoordinator: {2, 7},
	}}
	svc := NewService(repo, slog.Default())

	svc.NotifyRole(context.Background(), shared.RoleCoordinator, "Escala Recusada", "Motorista recusou a mudança #4", KindWarning)

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, int64(2), repo.inserted[0].UserID)
	assert.Equal(t, int64(7), repo.inserted[1].UserID)
	assert.Equal(t, KindWarning, repo.inserted[0].Kind)
}

func TestNotifyIsBestEffort(t *testing.T) {
	// Write failures are swallowed; callers never see them.
	repo := &mockRepository{insertError: errors.New("connection reset")}
	svc := NewService(repo, slog.Default())

	svc.NotifyUser(context.Background(), 3, "Teste", "mensagem", KindInfo)
	assert.Empty(t, repo.inserted)

	repo2 := &mockRepository{roleError: errors.New("connection reset")}
	svc2 := NewService(repo2, slog.Default())
	svc2.NotifyRole(context.Background(), shared.RoleAdmin, "Teste", "mensagem", KindInfo)
	assert.Empty(t, repo2.inserted)
}

func TestNotifyUserSkipsEmptyTarget(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, slog.Default())

	svc.NotifyUser(context.Background(), 0, "Teste", "mensagem", KindInfo)
	assert.Empty(t, repo.inserted)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, slog.Default())
	svc.NotifyUser(context.Background(), 3, "Teste", "mensagem", KindInfo)
	repo.inserted[0].ID = 1

	owner := shared.Actor{ID: 3, Role: shared.RoleSupervisor}
	stranger := shared.Actor{ID: 9, Role: shared.RoleSupervisor}

	assert.ErrorIs(t, svc.MarkRead(context.Background(), stranger, 1), shared.ErrNotFound)
	require.NoError(t, svc.MarkRead(context.Background(), owner, 1))
	assert.True(t, repo.inserted[0].Read)
}
