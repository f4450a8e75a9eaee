package residents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo abstracts resident persistence for the service.
type Repo interface {
	Get(ctx context.Context, id int64) (*Resident, error)
	List(ctx context.Context) ([]Resident, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	HasMoves(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, res Resident) (*Resident, error)
	Update(ctx context.Context, res Resident) (*Resident, error)
	Delete(ctx context.Context, id int64) error
}

// Auditor records performed actions.
type Auditor interface {
	Record(ctx context.Context, actor shared.Actor, action, details string) error
}

// Service wraps resident management rules.
type Service struct {
	repo     Repo
	audit    Auditor
	collator *collate.Collator
}

// NewService constructs a resident service.
func NewService(repo Repo, audit Auditor) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase),
	}
}

// normalize uppercases stored text the way every export expects it.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalize(*s)
	return &v
}

// Get retrieves a resident.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (*Resident, error) {
	if !actor.Can(shared.CapManageResidents) {
		return nil, shared.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// List returns residents in Brazilian Portuguese collation order.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Resident, error) {
	if !actor.Can(shared.CapManageResidents) {
		return nil, shared.ErrForbidden
	}
	residents, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(residents, func(i, j int) bool {
		return s.collator.CompareString(residents[i].Name, residents[j].Name) < 0
	})
	return residents, nil
}

// Create registers a resident. Names are deduplicated ignoring case.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateResidentRequest) (*Resident, error) {
	if !actor.Can(shared.CapManageResidents) {
		return nil, shared.ErrForbidden
	}
	name := normalize(req.Name)
	if name == "" {
		return nil, shared.Refuse("nome do morador é obrigatório")
	}
	exists, err := s.repo.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, fmt.Errorf("check resident name: %w", err)
	}
	if exists {
		return nil, shared.Refuse("já existe um morador chamado %s", name)
	}
	created, err := s.repo.Create(ctx, Resident{
		Name:  name,
		Phone: req.Phone,
		Unit:  normalizePtr(req.Unit),
		Tower: normalizePtr(req.Tower),
		Notes: normalizePtr(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "CRIAR_MORADOR", fmt.Sprintf("Morador %s", created.Name))
	return created, nil
}

// Update applies a partial resident update with the same dedup rule.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateResidentRequest) (*Resident, error) {
	if !actor.Can(shared.CapManageResidents) {
		return nil, shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get resident: %w", err)
	}

	if req.Name != nil {
		name := normalize(*req.Name)
		if name == "" {
			return nil, shared.Refuse("nome do morador é obrigatório")
		}
		exists, err := s.repo.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, fmt.Errorf("check resident name: %w", err)
		}
		if exists {
			return nil, shared.Refuse("já existe um morador chamado %s", name)
		}
		existing.Name = name
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.Unit != nil {
		existing.Unit = normalizePtr(req.Unit)
	}
	if req.Tower != nil {
		existing.Tower = normalizePtr(req.Tower)
	}
	if req.Notes != nil {
		existing.Notes = normalizePtr(req.Notes)
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, actor, "EDITAR_MORADOR", fmt.Sprintf("Morador %s", updated.Name))
	return updated, nil
}

// Delete removes a resident not referenced by any move.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	if !actor.Can(shared.CapManageResidents) {
		return shared.ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	linked, err := s.repo.HasMoves(ctx, id)
	if err != nil {
		return fmt.Errorf("check linked moves: %w", err)
	}
	if linked {
		return shared.Refuse("morador %s possui mudanças registradas e não pode ser removido", existing.Name)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, actor, "EXCLUIR_MORADOR", fmt.Sprintf("Morador %s", existing.Name))
	return nil
}
