package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/telemim/telemim-ops/internal/shared"
	"github.com/telemim/telemim-ops/internal/staff"
)

type fakeDirectory struct {
	employees map[int64]staff.Employee
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*staff.Employee, error) {
	for _, e := range d.employees {
		if strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (d *fakeDirectory) Get(_ context.Context, id int64) (*staff.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

type fakeSessions struct {
	created []string
	deleted []string
}

func (s *fakeSessions) CreateSession(_ context.Context, id string, _ int64, _ time.Time, _, _ string) error {
	s.created = append(s.created, id)
	return nil
}

func (s *fakeSessions) DeleteSession(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func seedEmployee(t *testing.T, status staff.EmployeeStatus) staff.Employee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo-forte"), bcrypt.MinCost)
	require.NoError(t, err)
	return staff.Employee{
		ID:           10,
		Name:         "Carla Nunes",
		Email:        "carla@telemim.com.br",
		Role:         shared.RoleSupervisor,
		Status:       status,
		PasswordHash: string(hash),
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return the employee", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusActive)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		got, err := svc.Authenticate(ctx, "CARLA@telemim.com.br", "segredo-forte")
		require.NoError(t, err)
		assert.Equal(t, emp.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusActive)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		_, err := svc.Authenticate(ctx, emp.Email, "chute")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("inactive employee cannot log in with the right password", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusInactive)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		_, err := svc.Authenticate(ctx, emp.Email, "segredo-forte")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{}}, &fakeSessions{})

		_, err := svc.Authenticate(ctx, "ninguem@telemim.com.br", "segredo-forte")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestLoadActor(t *testing.T) {
	ctx := context.Background()

	t.Run("active employee resolves to an actor", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusActive)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		actor, ok, err := svc.LoadActor(ctx, emp.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, shared.RoleSupervisor, actor.Role)
	})

	t.Run("inactive employee yields no actor", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusInactive)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		_, ok, err := svc.LoadActor(ctx, emp.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("employee on vacation still resolves", func(t *testing.T) {
		emp := seedEmployee(t, staff.StatusVacation)
		svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{emp.ID: emp}}, &fakeSessions{})

		_, ok, err := svc.LoadActor(ctx, emp.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSessionRegistry(t *testing.T) {
	ctx := context.Background()
	sessions := &fakeSessions{}
	svc := NewService(&fakeDirectory{employees: map[int64]staff.Employee{}}, sessions)

	require.NoError(t, svc.RegisterSession(ctx, "sess-1", 10, time.Now().Add(time.Hour), "10.0.0.1", "ua"))
	require.NoError(t, svc.RemoveSession(ctx, "sess-1"))
	assert.Equal(t, []string{"sess-1"}, sessions.created)
	assert.Equal(t, []string{"sess-1"}, sessions.deleted)
}
