package moves

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo abstracts move persistence for the service.
type Repo interface {
	Get(ctx context.Context, id int64) (*Move, error)
	List(ctx context.Context, req ListMovesRequest) ([]Move, error)
	Create(ctx context.Context, m Move) (int64, error)
	Update(ctx context.Context, m Move) error
	SetStatus(ctx context.Context, id int64, status MoveStatus) error
	SetVolume(ctx context.Context, id int64, volume float64) error
	SetVolumeValidation(ctx context.Context, id int64, status VolumeValidation, correctedVolume *float64, notes *string) error
	SetAssignmentStatus(ctx context.Context, id int64, role AssignmentRole, status AssignmentStatus) error
}

// Notifier delivers best-effort notifications; failures never surface here.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, title, message string)
	NotifyRole(ctx context.Context, role shared.Role, title, message string)
}

// Auditor records performed actions.
type Auditor interface {
	Record(ctx context.Context, actor shared.Actor, action, details string) error
}

// Service implements the move lifecycle. Every write goes to the
// repository first; callers only see state the store acknowledged.
type Service struct {
	repo     Repo
	notifier Notifier
	audit    Auditor
}

// NewService constructs a move service.
func NewService(repo Repo, notifier Notifier, audit Auditor) *Service {
	return &Service{repo: repo, notifier: notifier, audit: audit}
}

// Get returns one move.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (*Move, error) {
	return s.repo.Get(ctx, id)
}

// List returns moves matching the filter. Drivers and van operators only
// see moves they are assigned to.
func (s *Service) List(ctx context.Context, actor shared.Actor, req ListMovesRequest) ([]Move, error) {
	if actor.Role == shared.RoleDriver || actor.Role == shared.RoleVan {
		req.StaffID = &actor.ID
	}
	return s.repo.List(ctx, req)
}

// Create schedules a move. The new order starts Pendente with both
// confirmations PENDING, and every assigned staff member is notified.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateMoveRequest) (*Move, error) {
	if !actor.Can(shared.CapManageMoves) {
		return nil, shared.ErrForbidden
	}
	moveDate, err := time.Parse("2006-01-02", req.MoveDate)
	if err != nil {
		return nil, shared.Refuse("data da mudança inválida: %q", req.MoveDate)
	}

	move := Move{
		ResidentID:         req.ResidentID,
		Origin:             req.Origin,
		Destination:        req.Destination,
		MoveDate:           moveDate,
		MoveTime:           req.MoveTime,
		Status:             StatusPending,
		ItemsVolume:        coerceVolume(req.ItemsVolume),
		EstimatedCostCents: req.EstimatedCostCents,
		CoordinatorID:      req.CoordinatorID,
		SupervisorID:       req.SupervisorID,
		DriverID:           req.DriverID,
		VanID:              req.VanID,
		DriverConfirmation: AssignmentPending,
		VanConfirmation:    AssignmentPending,
		VolumeValidation:   VolumePending,
		Notes:              req.Notes,
		CreatedBy:          actor.ID,
	}

	id, err := s.repo.Create(ctx, move)
	if err != nil {
		return nil, fmt.Errorf("create move: %w", err)
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load created move: %w", err)
	}

	for _, staffID := range created.AssignedStaff() {
		if staffID == actor.ID {
			continue
		}
		s.notifier.NotifyUser(ctx, staffID, "Nova Mudança Atribuída",
			fmt.Sprintf("Você foi escalado para a mudança de %s em %s.", created.ResidentName, created.MoveDate.Format("02/01/2006")))
	}
	s.notifier.NotifyUser(ctx, actor.ID, "Mudança Registrada",
		fmt.Sprintf("Mudança de %s registrada com sucesso.", created.ResidentName))

	_ = s.audit.Record(ctx, actor, "CRIAR_MUDANCA", fmt.Sprintf("Mudança #%d de %s", created.ID, created.ResidentName))
	return created, nil
}

// Update edits move details. Edits by coordinators or supervisors are
// surfaced to the administrators.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateMoveRequest) (*Move, error) {
	if !actor.Can(shared.CapManageMoves) {
		return nil, shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}

	if req.Origin != nil {
		existing.Origin = *req.Origin
	}
	if req.Destination != nil {
		existing.Destination = *req.Destination
	}
	if req.MoveDate != nil {
		moveDate, err := time.Parse("2006-01-02", *req.MoveDate)
		if err != nil {
			return nil, shared.Refuse("data da mudança inválida: %q", *req.MoveDate)
		}
		existing.MoveDate = moveDate
	}
	if req.MoveTime != nil {
		existing.MoveTime = *req.MoveTime
	}
	if req.EstimatedCostCents != nil {
		existing.EstimatedCostCents = req.EstimatedCostCents
	}
	if req.CoordinatorID != nil {
		existing.CoordinatorID = req.CoordinatorID
	}
	if req.SupervisorID != nil {
		existing.SupervisorID = req.SupervisorID
	}
	if req.DriverID != nil {
		existing.DriverID = req.DriverID
	}
	if req.VanID != nil {
		existing.VanID = req.VanID
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update move: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}

	if actor.Role == shared.RoleCoordinator || actor.Role == shared.RoleSupervisor {
		s.notifier.NotifyRole(ctx, shared.RoleAdmin, "Mudança Atualizada",
			fmt.Sprintf("%s atualizou a mudança de %s.", actor.Name, updated.ResidentName))
	}
	_ = s.audit.Record(ctx, actor, "EDITAR_MUDANCA", fmt.Sprintf("Mudança #%d de %s", updated.ID, updated.ResidentName))
	return updated, nil
}

// AdvanceStatus moves the order forward through its lifecycle.
// Aprovado requires coordinator, supervisor and driver slots filled;
// Concluído requires a measured volume greater than zero. The target
// must rank above the current status: stage skips are allowed,
// regressions are refused.
func (s *Service) AdvanceStatus(ctx context.Context, actor shared.Actor, id int64, target MoveStatus) (*Move, error) {
	if !actor.Can(shared.CapSetMoveStatus) {
		return nil, shared.ErrForbidden
	}
	if !target.IsValid() {
		return nil, shared.Refuse("status desconhecido: %q", target)
	}

	move, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}
	if !move.Status.CanAdvanceTo(target) {
		return nil, shared.Refuse("não é possível voltar de %s para %s", move.Status, target)
	}
	if target == StatusApproved && !move.HasFullCrew() {
		return nil, shared.Refuse("aprovação exige coordenador, supervisor e motorista alocados")
	}
	if target == StatusCompleted && move.ItemsVolume <= 0 {
		return nil, shared.Refuse("conclusão exige volume aferido maior que zero")
	}

	if err := s.repo.SetStatus(ctx, id, target); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}

	if actor.Role == shared.RoleCoordinator || actor.Role == shared.RoleSupervisor {
		s.notifier.NotifyRole(ctx, shared.RoleAdmin, "Status de Mudança Alterado",
			fmt.Sprintf("%s alterou a mudança de %s para %s.", actor.Name, updated.ResidentName, target))
	}
	if (actor.Role == shared.RoleAdmin || actor.Role == shared.RoleSupervisor) &&
		(target == StatusApproved || target == StatusCompleted) {
		s.notifier.NotifyRole(ctx, shared.RoleCoordinator, "Status de Mudança Alterado",
			fmt.Sprintf("A mudança de %s agora está %s.", updated.ResidentName, target))
	}

	_ = s.audit.Record(ctx, actor, "ALTERAR_STATUS",
		fmt.Sprintf("Mudança #%d de %s: %s", updated.ID, updated.ResidentName, target))
	return updated, nil
}

// SetVolume writes the measured volume. Non-finite or negative values
// are coerced to zero rather than rejected.
func (s *Service) SetVolume(ctx context.Context, actor shared.Actor, id int64, volume float64) (*Move, error) {
	if !actor.Can(shared.CapEditVolume) {
		return nil, shared.ErrForbidden
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}
	v := coerceVolume(volume)
	if err := s.repo.SetVolume(ctx, id, v); err != nil {
		return nil, fmt.Errorf("set volume: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}
	_ = s.audit.Record(ctx, actor, "EDITAR_CUBAGEM",
		fmt.Sprintf("Mudança #%d de %s: %.2f m³", updated.ID, updated.ResidentName, v))
	return updated, nil
}

// ApproveVolume accepts the measured volume of a completed move.
// A resolved validation cannot be reopened.
func (s *Service) ApproveVolume(ctx context.Context, actor shared.Actor, id int64) (*Move, error) {
	move, err := s.volumeValidationTarget(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetVolumeValidation(ctx, id, VolumeApproved, nil, nil); err != nil {
		return nil, fmt.Errorf("approve volume: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}
	_ = s.audit.Record(ctx, actor, "VALIDAR_CUBAGEM",
		fmt.Sprintf("Mudança #%d de %s: cubagem aprovada", move.ID, move.ResidentName))
	return updated, nil
}

// ContestVolume disputes the measured volume of a completed move,
// recording the corrected figure and the reviewer's notes.
func (s *Service) ContestVolume(ctx context.Context, actor shared.Actor, id int64, req ContestVolumeRequest) (*Move, error) {
	move, err := s.volumeValidationTarget(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	notes := strings.ToUpper(strings.TrimSpace(req.Notes))
	corrected := req.CorrectedVolume
	if err := s.repo.SetVolumeValidation(ctx, id, VolumeRejected, &corrected, &notes); err != nil {
		return nil, fmt.Errorf("contest volume: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}
	s.notifier.NotifyRole(ctx, shared.RoleAdmin, "Cubagem Contestada",
		fmt.Sprintf("%s contestou a cubagem da mudança de %s (corrigida: %.2f m³).", actor.Name, move.ResidentName, corrected))
	_ = s.audit.Record(ctx, actor, "CONTESTAR_CUBAGEM",
		fmt.Sprintf("Mudança #%d de %s: %.2f m³", move.ID, move.ResidentName, corrected))
	return updated, nil
}

func (s *Service) volumeValidationTarget(ctx context.Context, actor shared.Actor, id int64) (*Move, error) {
	if !actor.Can(shared.CapValidateVolume) {
		return nil, shared.ErrForbidden
	}
	move, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}
	if move.Status != StatusCompleted {
		return nil, shared.Refuse("validação de volume só se aplica a mudanças concluídas")
	}
	if move.VolumeValidation != VolumePending {
		return nil, shared.Refuse("validação de volume já resolvida como %s", move.VolumeValidation)
	}
	return move, nil
}

// ConfirmAssignment records a driver or van response to their slot.
// Only the assigned individual may answer; administrators may override.
// A declined slot alerts every coordinator.
func (s *Service) ConfirmAssignment(ctx context.Context, actor shared.Actor, id int64, req ConfirmAssignmentRequest) (*Move, error) {
	if !req.Status.IsValid() || req.Status == AssignmentPending {
		return nil, shared.Refuse("resposta de alocação deve ser CONFIRMED ou DECLINED")
	}
	move, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get move: %w", err)
	}

	var assignedID *int64
	switch req.Role {
	case AssignmentRoleDriver:
		assignedID = move.DriverID
	case AssignmentRoleVan:
		assignedID = move.VanID
	default:
		return nil, shared.Refuse("papel de alocação desconhecido: %q", req.Role)
	}
	if assignedID == nil || *assignedID == 0 {
		return nil, shared.Refuse("mudança não possui %s alocado", req.Role)
	}
	if *assignedID != actor.ID && !actor.Can(shared.CapOverrideConfirmation) {
		return nil, shared.ErrForbidden
	}

	if err := s.repo.SetAssignmentStatus(ctx, id, req.Role, req.Status); err != nil {
		return nil, fmt.Errorf("set assignment status: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load updated move: %w", err)
	}

	if req.Status == AssignmentDeclined {
		s.notifier.NotifyRole(ctx, shared.RoleCoordinator, "Escala Recusada",
			fmt.Sprintf("%s recusou a escala (%s) da mudança de %s.", actor.Name, req.Role, updated.ResidentName))
	}
	_ = s.audit.Record(ctx, actor, "RESPONDER_ESCALA",
		fmt.Sprintf("Mudança #%d de %s: %s %s", updated.ID, updated.ResidentName, req.Role, req.Status))
	return updated, nil
}

// coerceVolume maps invalid numeric input onto zero.
func coerceVolume(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
