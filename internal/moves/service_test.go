package moves

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemim/telemim-ops/internal/shared"
)

// ============================================================================
// TEST DOUBLES
// ============================================================================

type sentNotification struct {
	userID int64
	role   shared.Role
	title  string
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID int64, title, message string) {
	m.sent = append(m.sent, sentNotification{userID: userID, title: title})
}

func (m *mockNotifier) NotifyRole(ctx context.Context, role shared.Role, title, message string) {
	m.sent = append(m.sent, sentNotification{role: role, title: title})
}

func (m *mockNotifier) roleCount(role shared.Role) int {
	count := 0
	for _, n := range m.sent {
		if n.role == role {
			count++
		}
	}
	return count
}

func (m *mockNotifier) userIDs() []int64 {
	var ids []int64
	for _, n := range m.sent {
		if n.userID != 0 {
			ids = append(ids, n.userID)
		}
	}
	return ids
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(ctx context.Context, actor shared.Actor, action, details string) error {
	m.actions = append(m.actions, action)
	return nil
}

func newTestService() (*Service, *mockRepository, *mockNotifier, *mockAuditor) {
	repo := newMockRepository()
	notifier := &mockNotifier{}
	auditor := &mockAuditor{}
	return NewService(repo, notifier, auditor), repo, notifier, auditor
}

var (
	admin       = shared.Actor{ID: 1, Name: "Ana", Role: shared.RoleAdmin}
	coordinator = shared.Actor{ID: 2, Name: "Carlos", Role: shared.RoleCoordinator}
	supervisor  = shared.Actor{ID: 3, Name: "Sueli", Role: shared.RoleSupervisor}
	driver      = shared.Actor{ID: 4, Name: "Diego", Role: shared.RoleDriver}
	vanOperator = shared.Actor{ID: 5, Name: "Vera", Role: shared.RoleVan}
)

func ptr[T any](v T) *T { return &v }

func fullCrewMove() Move {
	return Move{
		ResidentID:    10,
		ResidentName:  "MARIA SILVA",
		Origin:        "TORRE A, APT 101",
		Destination:   "TORRE B, APT 202",
		CoordinatorID: ptr(coordinator.ID),
		SupervisorID:  ptr(supervisor.ID),
		DriverID:      ptr(driver.ID),
		VanID:         ptr(vanOperator.ID),
	}
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateMove(t *testing.T) {
	ctx := context.Background()

	t.Run("starts pending with pending confirmations", func(t *testing.T) {
		svc, _, notifier, auditor := newTestService()
		created, err := svc.Create(ctx, coordinator, CreateMoveRequest{
			ResidentID:    10,
			Origin:        "TORRE A, APT 101",
			Destination:   "TORRE B, APT 202",
			MoveDate:      "2026-09-15",
			MoveTime:      "08:00",
			CoordinatorID: ptr(coordinator.ID),
			SupervisorID:  ptr(supervisor.ID),
			DriverID:      ptr(driver.ID),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, created.Status)
		assert.Equal(t, AssignmentPending, created.DriverConfirmation)
		assert.Equal(t, AssignmentPending, created.VanConfirmation)
		assert.Equal(t, VolumePending, created.VolumeValidation)
		assert.Contains(t, auditor.actions, "CRIAR_MUDANCA")

		// Assigned staff minus the actor, plus the actor's own receipt.
		ids := notifier.userIDs()
		assert.ElementsMatch(t, []int64{supervisor.ID, driver.ID, coordinator.ID}, ids)
	})

	t.Run("driver cannot create", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, driver, CreateMoveRequest{ResidentID: 10, MoveDate: "2026-09-15"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("bad date refused", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, admin, CreateMoveRequest{ResidentID: 10, MoveDate: "15/09/2026"})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})
}

// ============================================================================
// STATUS LIFECYCLE
// ============================================================================

func TestAdvanceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("coordinator cannot change status", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.AdvanceStatus(ctx, coordinator, seeded.ID, StatusApproved)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("approval requires full crew", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		move := fullCrewMove()
		move.DriverID = nil
		seeded := repo.seed(move)
		_, err := svc.AdvanceStatus(ctx, admin, seeded.ID, StatusApproved)
		require.ErrorIs(t, err, shared.ErrRefused)

		stored, err := repo.Get(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status, "refusal must leave state untouched")
	})

	t.Run("completion requires measured volume", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		move := fullCrewMove()
		move.Status = StatusEnRoute
		seeded := repo.seed(move)
		_, err := svc.AdvanceStatus(ctx, admin, seeded.ID, StatusCompleted)
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("regression refused", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		move := fullCrewMove()
		move.Status = StatusEnRoute
		seeded := repo.seed(move)
		_, err := svc.AdvanceStatus(ctx, admin, seeded.ID, StatusApproved)
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("skip ahead allowed", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		updated, err := svc.AdvanceStatus(ctx, admin, seeded.ID, StatusEnRoute)
		require.NoError(t, err)
		assert.Equal(t, StatusEnRoute, updated.Status)
	})

	t.Run("admin approval notifies coordinators", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.AdvanceStatus(ctx, admin, seeded.ID, StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, 1, notifier.roleCount(shared.RoleCoordinator))
		assert.Equal(t, 0, notifier.roleCount(shared.RoleAdmin))
	})

	t.Run("supervisor change notifies admins", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService()
		move := fullCrewMove()
		move.ItemsVolume = 18
		move.Status = StatusEnRoute
		seeded := repo.seed(move)
		_, err := svc.AdvanceStatus(ctx, supervisor, seeded.ID, StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, 1, notifier.roleCount(shared.RoleAdmin))
		// Supervisor completing also alerts coordinators.
		assert.Equal(t, 1, notifier.roleCount(shared.RoleCoordinator))
	})

	t.Run("unknown status refused", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.AdvanceStatus(ctx, admin, seeded.ID, MoveStatus("Arquivado"))
		assert.ErrorIs(t, err, shared.ErrRefused)
	})
}

// ============================================================================
// VOLUME
// ============================================================================

func TestSetVolume(t *testing.T) {
	ctx := context.Background()

	t.Run("coordinator cannot edit volume", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.SetVolume(ctx, coordinator, seeded.ID, 15)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("invalid input coerced to zero", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		for _, input := range []float64{-3, math.NaN(), math.Inf(1)} {
			seeded := repo.seed(fullCrewMove())
			updated, err := svc.SetVolume(ctx, supervisor, seeded.ID, input)
			require.NoError(t, err)
			assert.Zerof(t, updated.ItemsVolume, "input %v", input)
		}
	})

	t.Run("valid volume persisted", func(t *testing.T) {
		svc, repo, _, auditor := newTestService()
		seeded := repo.seed(fullCrewMove())
		updated, err := svc.SetVolume(ctx, admin, seeded.ID, 22.5)
		require.NoError(t, err)
		assert.Equal(t, 22.5, updated.ItemsVolume)
		assert.Contains(t, auditor.actions, "EDITAR_CUBAGEM")
	})
}

func TestVolumeValidation(t *testing.T) {
	ctx := context.Background()

	completedMove := func() Move {
		move := fullCrewMove()
		move.Status = StatusCompleted
		move.ItemsVolume = 20
		return move
	}

	t.Run("supervisor cannot validate", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(completedMove())
		_, err := svc.ApproveVolume(ctx, supervisor, seeded.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("only completed moves validated", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.ApproveVolume(ctx, coordinator, seeded.ID)
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("approve resolves validation", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(completedMove())
		updated, err := svc.ApproveVolume(ctx, coordinator, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, VolumeApproved, updated.VolumeValidation)
	})

	t.Run("contest stores correction and alerts admins", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService()
		seeded := repo.seed(completedMove())
		updated, err := svc.ContestVolume(ctx, coordinator, seeded.ID, ContestVolumeRequest{
			CorrectedVolume: 17.5,
			Notes:           "Medição divergente na conferência",
		})
		require.NoError(t, err)
		assert.Equal(t, VolumeRejected, updated.VolumeValidation)
		require.NotNil(t, updated.CorrectedVolume)
		assert.Equal(t, 17.5, *updated.CorrectedVolume)
		require.NotNil(t, updated.ValidationNotes)
		assert.Equal(t, "MEDIÇÃO DIVERGENTE NA CONFERÊNCIA", *updated.ValidationNotes)
		assert.Equal(t, 1, notifier.roleCount(shared.RoleAdmin))
	})

	t.Run("resolved validation cannot be reopened", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(completedMove())
		_, err := svc.ApproveVolume(ctx, admin, seeded.ID)
		require.NoError(t, err)

		_, err = svc.ContestVolume(ctx, admin, seeded.ID, ContestVolumeRequest{CorrectedVolume: 5, Notes: "tarde demais"})
		assert.ErrorIs(t, err, shared.ErrRefused)
		_, err = svc.ApproveVolume(ctx, admin, seeded.ID)
		assert.ErrorIs(t, err, shared.ErrRefused)
	})
}

// ============================================================================
// ASSIGNMENT CONFIRMATION
// ============================================================================

func TestConfirmAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("assigned driver confirms own slot", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		updated, err := svc.ConfirmAssignment(ctx, driver, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleDriver, Status: AssignmentConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, AssignmentConfirmed, updated.DriverConfirmation)
		assert.Equal(t, AssignmentPending, updated.VanConfirmation)
	})

	t.Run("stranger cannot answer for the driver", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		other := shared.Actor{ID: 99, Name: "Otto", Role: shared.RoleDriver}
		_, err := svc.ConfirmAssignment(ctx, other, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleDriver, Status: AssignmentConfirmed,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin overrides van slot", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		updated, err := svc.ConfirmAssignment(ctx, admin, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleVan, Status: AssignmentConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, AssignmentConfirmed, updated.VanConfirmation)
	})

	t.Run("decline alerts coordinators", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.ConfirmAssignment(ctx, vanOperator, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleVan, Status: AssignmentDeclined,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, notifier.roleCount(shared.RoleCoordinator))
	})

	t.Run("empty slot refused", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		move := fullCrewMove()
		move.VanID = nil
		seeded := repo.seed(move)
		_, err := svc.ConfirmAssignment(ctx, admin, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleVan, Status: AssignmentConfirmed,
		})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("pending is not an answer", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		seeded := repo.seed(fullCrewMove())
		_, err := svc.ConfirmAssignment(ctx, driver, seeded.ID, ConfirmAssignmentRequest{
			Role: AssignmentRoleDriver, Status: AssignmentPending,
		})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})
}

// ============================================================================
// LISTING
// ============================================================================

func TestListScoping(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	repo.seed(fullCrewMove())
	unrelated := fullCrewMove()
	unrelated.DriverID = ptr(int64(77))
	unrelated.VanID = nil
	repo.seed(unrelated)

	t.Run("driver only sees own assignments", func(t *testing.T) {
		list, err := svc.List(ctx, driver, ListMovesRequest{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, driver.ID, *list[0].DriverID)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		list, err := svc.List(ctx, admin, ListMovesRequest{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

// Guards against the repo error path swallowing the wrapped cause.
func TestGetPropagatesRepoError(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.getError = fmt.Errorf("connection reset")
	_, err := svc.Get(context.Background(), admin, 1)
	assert.Error(t, err)
}
