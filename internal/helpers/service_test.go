package helpers

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemim/telemim-ops/internal/shared"
)

type mockRepository struct {
	helpers    map[int64]Helper
	attendance map[string]Attendance
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		helpers:    make(map[int64]Helper),
		attendance: make(map[string]Attendance),
	}
}

func attendanceKey(a Attendance) string {
	return a.WorkDate.Format("2006-01-02") + "|" + strconv.FormatInt(a.HelperID, 10)
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Helper, error) {
	h, ok := m.helpers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &h, nil
}

func (m *mockRepository) List(context.Context) ([]Helper, error) {
	out := make([]Helper, 0, len(m.helpers))
	for _, h := range m.helpers {
		out = append(out, h)
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, h Helper) (*Helper, error) {
	m.nextID++
	h.ID = m.nextID
	h.Active = true
	m.helpers[h.ID] = h
	return &h, nil
}

func (m *mockRepository) Update(_ context.Context, h Helper) (*Helper, error) {
	if _, ok := m.helpers[h.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	m.helpers[h.ID] = h
	return &h, nil
}

func (m *mockRepository) UpsertAttendance(_ context.Context, a Attendance) (*Attendance, error) {
	key := attendanceKey(a)
	if existing, ok := m.attendance[key]; ok {
		a.ID = existing.ID
	} else {
		m.nextID++
		a.ID = m.nextID
	}
	a.RecordedAt = time.Now()
	m.attendance[key] = a
	return &a, nil
}

func (m *mockRepository) AttendanceByDate(_ context.Context, date time.Time) ([]Attendance, error) {
	out := make([]Attendance, 0)
	for _, a := range m.attendance {
		if a.WorkDate.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, _ shared.Actor, action, _ string) error {
	m.actions = append(m.actions, action)
	return nil
}

var (
	supervisorActor = shared.Actor{ID: 3, Name: "Carla", Role: shared.RoleSupervisor}
	driverActor     = shared.Actor{ID: 4, Name: "Diego", Role: shared.RoleDriver}
)

func TestCreateHelper(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	auditor := &mockAuditor{}
	svc := NewService(repo, auditor)

	created, err := svc.Create(ctx, supervisorActor, CreateHelperRequest{Name: "  joão silva "})
	require.NoError(t, err)
	assert.Equal(t, "JOÃO SILVA", created.Name)
	assert.True(t, created.Active)
	assert.Contains(t, auditor.actions, "CRIAR_AJUDANTE")

	_, err = svc.Create(ctx, driverActor, CreateHelperRequest{Name: "Pedro"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	helper, err := svc.Create(ctx, supervisorActor, CreateHelperRequest{Name: "João"})
	require.NoError(t, err)

	t.Run("repeated marks overwrite, never duplicate", func(t *testing.T) {
		first, err := svc.MarkAttendance(ctx, supervisorActor, MarkAttendanceRequest{
			HelperID: helper.ID, WorkDate: "2026-09-01", Present: true,
		})
		require.NoError(t, err)

		second, err := svc.MarkAttendance(ctx, supervisorActor, MarkAttendanceRequest{
			HelperID: helper.ID, WorkDate: "2026-09-01", Present: false,
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.False(t, second.Present)

		marks, err := svc.AttendanceByDate(ctx, supervisorActor, "2026-09-01")
		require.NoError(t, err)
		assert.Len(t, marks, 1)
	})

	t.Run("unknown helper fails", func(t *testing.T) {
		_, err := svc.MarkAttendance(ctx, supervisorActor, MarkAttendanceRequest{
			HelperID: 999, WorkDate: "2026-09-01", Present: true,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("bad date is refused", func(t *testing.T) {
		_, err := svc.MarkAttendance(ctx, supervisorActor, MarkAttendanceRequest{
			HelperID: helper.ID, WorkDate: "01/09/2026", Present: true,
		})
		assert.ErrorIs(t, err, shared.ErrRefused)
	})
}

func TestDeactivateHelper(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockAuditor{})

	helper, err := svc.Create(ctx, supervisorActor, CreateHelperRequest{Name: "João"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, supervisorActor, helper.ID, UpdateHelperRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
}
