package staff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/telemim/telemim-ops/internal/shared"
)

type mockRepository struct {
	employees map[int64]Employee
	nextID    int64
}

func newMockRepository() *mockRepository {
	// Created employees get IDs from 100 so they never collide with the
	// fixed actor IDs used by the tests.
	return &mockRepository{employees: make(map[int64]Employee), nextID: 100}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (m *mockRepository) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) List(context.Context) ([]Employee, error) {
	out := make([]Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, e Employee) (*Employee, error) {
	for _, existing := range m.employees {
		if strings.EqualFold(existing.Email, e.Email) {
			return nil, shared.Refuse("já existe um funcionário com o e-mail %s", e.Email)
		}
	}
	m.nextID++
	e.ID = m.nextID
	m.employees[e.ID] = e
	return &e, nil
}

func (m *mockRepository) Update(_ context.Context, e Employee) (*Employee, error) {
	if _, ok := m.employees[e.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	m.employees[e.ID] = e
	return &e, nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.employees[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, _ shared.Actor, action, _ string) error {
	m.actions = append(m.actions, action)
	return nil
}

var (
	adminActor      = shared.Actor{ID: 1, Name: "Alice", Role: shared.RoleAdmin}
	supervisorActor = shared.Actor{ID: 3, Name: "Carla", Role: shared.RoleSupervisor}
)

func TestCreateEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and activates the account", func(t *testing.T) {
		repo := newMockRepository()
		auditor := &mockAuditor{}
		svc := NewService(repo, auditor)

		created, err := svc.Create(ctx, adminActor, CreateEmployeeRequest{
			Name:     "Diego Santos",
			Email:    "diego@telemim.com.br",
			Password: "segredo-forte",
			Role:     shared.RoleDriver,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusActive, created.Status)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("segredo-forte")))
		assert.Contains(t, auditor.actions, "CRIAR_FUNCIONARIO")
	})

	t.Run("duplicate email is refused", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, &mockAuditor{})

		_, err := svc.Create(ctx, adminActor, CreateEmployeeRequest{
			Name: "Diego", Email: "diego@telemim.com.br", Password: "segredo-forte", Role: shared.RoleDriver,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, adminActor, CreateEmployeeRequest{
			Name: "Outro Diego", Email: "DIEGO@telemim.com.br", Password: "segredo-forte", Role: shared.RoleVan,
		})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("unknown role is refused", func(t *testing.T) {
		svc := NewService(newMockRepository(), &mockAuditor{})

		_, err := svc.Create(ctx, adminActor, CreateEmployeeRequest{
			Name: "Diego", Email: "diego@telemim.com.br", Password: "segredo-forte", Role: "Estagiário",
		})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("supervisor cannot manage staff", func(t *testing.T) {
		svc := NewService(newMockRepository(), &mockAuditor{})

		_, err := svc.Create(ctx, supervisorActor, CreateEmployeeRequest{
			Name: "Diego", Email: "diego@telemim.com.br", Password: "segredo-forte", Role: shared.RoleDriver,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	created, err := svc.Create(ctx, adminActor, CreateEmployeeRequest{
		Name: "Diego", Email: "diego@telemim.com.br", Password: "segredo-forte", Role: shared.RoleDriver,
	})
	require.NoError(t, err)
	require.NotEqual(t, adminActor.ID, created.ID)

	t.Run("self-removal is refused", func(t *testing.T) {
		self := shared.Actor{ID: created.ID, Name: created.Name, Role: shared.RoleAdmin}
		err := svc.Delete(ctx, self, created.ID)
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("admin removes another account", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, adminActor, created.ID))
		assert.Empty(t, repo.employees)
	})
}

func TestUpdateEmployeeStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	created, err := svc.Create(ctx, adminActor, CreateEmployeeRequest{
		Name: "Diego", Email: "diego@telemim.com.br", Password: "segredo-forte", Role: shared.RoleDriver,
	})
	require.NoError(t, err)

	vacation := StatusVacation
	updated, err := svc.Update(ctx, adminActor, created.ID, UpdateEmployeeRequest{Status: &vacation})
	require.NoError(t, err)
	assert.Equal(t, StatusVacation, updated.Status)

	bogus := EmployeeStatus("Sumido")
	_, err = svc.Update(ctx, adminActor, created.ID, UpdateEmployeeRequest{Status: &bogus})
	assert.ErrorIs(t, err, shared.ErrRefused)
}
