package residents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemim/telemim-ops/internal/shared"
)

type mockRepository struct {
	residents map[int64]Resident
	withMoves map[int64]bool
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		residents: make(map[int64]Resident),
		withMoves: make(map[int64]bool),
	}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Resident, error) {
	res, ok := m.residents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &res, nil
}

func (m *mockRepository) List(context.Context) ([]Resident, error) {
	out := make([]Resident, 0, len(m.residents))
	for _, res := range m.residents {
		out = append(out, res)
	}
	return out, nil
}

func (m *mockRepository) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	for id, res := range m.residents {
		if id != excludeID && strings.EqualFold(res.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) HasMoves(_ context.Context, id int64) (bool, error) {
	return m.withMoves[id], nil
}

func (m *mockRepository) Create(_ context.Context, res Resident) (*Resident, error) {
	m.nextID++
	res.ID = m.nextID
	m.residents[res.ID] = res
	return &res, nil
}

func (m *mockRepository) Update(_ context.Context, res Resident) (*Resident, error) {
	if _, ok := m.residents[res.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	m.residents[res.ID] = res
	return &res, nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.residents[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.residents, id)
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
	coordinatorActor = shared.Actor{ID: 2, Name: "Bruno", Role: shared.RoleCoordinator}
	driverActor      = shared.Actor{ID: 4, Name: "Diego", Role: shared.RoleDriver}
)

func ptr(s string) *string { return &s }

func TestCreateResident(t *testing.T) {
	ctx := context.Background()

	t.Run("uppercases stored fields", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, &mockAuditor{})

		created, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{
			Name:  "  maria souza ",
			Unit:  ptr("ap 12"),
			Tower: ptr("torre b"),
		})
		require.NoError(t, err)
		assert.Equal(t, "MARIA SOUZA", created.Name)
		assert.Equal(t, "AP 12", *created.Unit)
		assert.Equal(t, "TORRE B", *created.Tower)
	})

	t.Run("duplicate name ignoring case is refused", func(t *testing.T) {
		repo := newMockRepository()
		auditor := &mockAuditor{}
		svc := NewService(repo, auditor)

		_, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "Maria Souza"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "MARIA souza"})
		assert.ErrorIs(t, err, shared.ErrRefused)
		assert.Len(t, repo.residents, 1)
	})

	t.Run("blank name is refused", func(t *testing.T) {
		svc := NewService(newMockRepository(), &mockAuditor{})

		_, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "   "})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("driver is forbidden", func(t *testing.T) {
		svc := NewService(newMockRepository(), &mockAuditor{})

		_, err := svc.Create(ctx, driverActor, CreateResidentRequest{Name: "Maria"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestUpdateResident(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	first, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "Maria Souza"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "José Lima"})
	require.NoError(t, err)

	t.Run("renaming onto another resident is refused", func(t *testing.T) {
		_, err := svc.Update(ctx, coordinatorActor, second.ID, UpdateResidentRequest{Name: ptr("maria souza")})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})

	t.Run("keeping your own name is allowed", func(t *testing.T) {
		updated, err := svc.Update(ctx, coordinatorActor, first.ID, UpdateResidentRequest{
			Name:  ptr("Maria Souza"),
			Phone: ptr("11 99999-0000"),
		})
		require.NoError(t, err)
		assert.Equal(t, "MARIA SOUZA", updated.Name)
		assert.Equal(t, "11 99999-0000", *updated.Phone)
	})
}

func TestDeleteResident(t *testing.T) {
	ctx := context.Background()

	t.Run("resident with moves cannot be removed", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, &mockAuditor{})

		created, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "Maria"})
		require.NoError(t, err)
		repo.withMoves[created.ID] = true

		err = svc.Delete(ctx, coordinatorActor, created.ID)
		assert.ErrorIs(t, err, shared.ErrRefused)
		assert.Contains(t, repo.residents, created.ID)
	})

	t.Run("unlinked resident is removed and audited", func(t *testing.T) {
		repo := newMockRepository()
		auditor := &mockAuditor{}
		svc := NewService(repo, auditor)

		created, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: "Maria"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, coordinatorActor, created.ID))
		assert.Empty(t, repo.residents)
		assert.Contains(t, auditor.actions, "EXCLUIR_MORADOR")
	})
}

func TestListResidentsCollation(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	for _, name := range []string{"Zélia", "Álvaro", "Bruno"} {
		_, err := svc.Create(ctx, coordinatorActor, CreateResidentRequest{Name: name})
		require.NoError(t, err)
	}

	listed, err := svc.List(ctx, coordinatorActor)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// Accented names sort by Portuguese collation, not byte order.
	assert.Equal(t, "ÁLVARO", listed[0].Name)
	assert.Equal(t, "BRUNO", listed[1].Name)
	assert.Equal(t, "ZÉLIA", listed[2].Name)
}
