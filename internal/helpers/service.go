package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo abstracts helper persistence for the service.
type Repo interface {
	Get(ctx context.Context, id int64) (*Helper, error)
	List(ctx context.Context) ([]Helper, error)
	Create(ctx context.Context, h Helper) (*Helper, error)
	Update(ctx context.Context, h Helper) (*Helper, error)
	UpsertAttendance(ctx context.Context, a Attendance) (*Attendance, error)
	AttendanceByDate(ctx context.Context, date time.Time) ([]Attendance, error)
}

// Auditor records performed actions.
type Auditor interface {
	Record(ctx context.Context, actor shared.Actor, action, details string) error
}

// Service wraps helper registry and attendance rules.
type Service struct {
	repo  Repo
	audit Auditor
}

// NewService constructs a helpers service.
func NewService(repo Repo, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns all helpers.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Helper, error) {
	if !actor.Can(shared.CapManageHelpers) {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx)
}

// Create registers a helper.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateHelperRequest) (*Helper, error) {
	if !actor.Can(shared.CapManageHelpers) {
		return nil, shared.ErrForbidden
	}
	name := strings.ToUpper(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, shared.Refuse("nome do ajudante é obrigatório")
	}
	created, err := s.repo.Create(ctx, Helper{Name: name, PixKey: req.PixKey})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "CRIAR_AJUDANTE", fmt.Sprintf("Ajudante %s", created.Name))
	return created, nil
}

// Update applies a partial helper update.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateHelperRequest) (*Helper, error) {
	if !actor.Can(shared.CapManageHelpers) {
		return nil, shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get helper: %w", err)
	}
	if req.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*req.Name))
		if name == "" {
			return nil, shared.Refuse("nome do ajudante é obrigatório")
		}
		existing.Name = name
	}
	if req.PixKey != nil {
		existing.PixKey = req.PixKey
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}
	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "EDITAR_AJUDANTE", fmt.Sprintf("Ajudante %s", updated.Name))
	return updated, nil
}

// MarkAttendance upserts the attendance mark for (date, helper).
func (s *Service) MarkAttendance(ctx context.Context, actor shared.Actor, req MarkAttendanceRequest) (*Attendance, error) {
	if !actor.Can(shared.CapManageHelpers) {
		return nil, shared.ErrForbidden
	}
	date, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return nil, shared.Refuse("data de trabalho inválida: %s", req.WorkDate)
	}
	if _, err := s.repo.Get(ctx, req.HelperID); err != nil {
		return nil, fmt.Errorf("get helper: %w", err)
	}
	mark, err := s.repo.UpsertAttendance(ctx, Attendance{
		HelperID:   req.HelperID,
		WorkDate:   date,
		Present:    req.Present,
		RecordedBy: actor.ID,
	})
	if err != nil {
		return nil, err
	}
	return mark, nil
}

// AttendanceByDate lists marks for a work date.
func (s *Service) AttendanceByDate(ctx context.Context, actor shared.Actor, date string) ([]Attendance, error) {
	if !actor.Can(shared.CapManageHelpers) {
		return nil, shared.ErrForbidden
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, shared.Refuse("data de trabalho inválida: %s", date)
	}
	return s.repo.AttendanceByDate(ctx, day)
}
