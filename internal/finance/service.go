package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/telemim/telemim-ops/internal/shared"
)

// Repo is the persistence surface the service requires.
type Repo interface {
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	SubmitDailyRecord(ctx context.Context, rec DailyRecord, entries []FinancialRecord) (DailyRecord, error)
	GetDailyRecord(ctx context.Context, id int64) (DailyRecord, error)
	ListDailyRecords(ctx context.Context, from, to time.Time) ([]DailyRecord, error)
	CreateFinancialRecord(ctx context.Context, e FinancialRecord) (FinancialRecord, error)
	GetFinancialRecord(ctx context.Context, id int64) (FinancialRecord, error)
	ListFinancialRecords(ctx context.Context, req ListFinancialRecordsRequest) ([]FinancialRecord, error)
	SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) error
	Totals(ctx context.Context, from, to time.Time) (incomeCents, expenseCents int64, err error)
}

// IdempotencyGuard deduplicates submissions by client-supplied key.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Auditor records finance actions in the audit trail.
type Auditor interface {
	Record(ctx context.Context, actor shared.Actor, action, details string) error
}

// Service enforces access and pricing rules over the finance data.
type Service struct {
	repo        Repo
	idempotency IdempotencyGuard
	auditor     Auditor
}

func NewService(repo Repo, idempotency IdempotencyGuard, auditor Auditor) *Service {
	return &Service{repo: repo, idempotency: idempotency, auditor: auditor}
}

const idempotencyModule = "finance.daily_record"

// defaultSettings seeds the rate table on first access.
var defaultSettings = Settings{
	TruckFirstTripCents:       45000,
	TruckAdditionalTripCents:  15000,
	HelperBaseCents:           10000,
	HelperAdditionalTripCents: 2000,
	SupervisorDailyCents:      15000,
	LunchUnitCents:            1500,
	VanDailyCents:             20000,
	VanLunchCents:             1500,
}

// Settings returns the current rate table.
func (s *Service) Settings(ctx context.Context, actor shared.Actor) (Settings, error) {
	if !actor.Can(shared.CapFinance) {
		return Settings{}, shared.ErrForbidden
	}
	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return defaultSettings, nil
	}
	return settings, err
}

// UpdateSettings replaces the rate table.
func (s *Service) UpdateSettings(ctx context.Context, actor shared.Actor, req UpdateSettingsRequest) (Settings, error) {
	if !actor.Can(shared.CapFinance) {
		return Settings{}, shared.ErrForbidden
	}
	settings := Settings{
		TruckFirstTripCents:       req.TruckFirstTripCents,
		TruckAdditionalTripCents:  req.TruckAdditionalTripCents,
		HelperBaseCents:           req.HelperBaseCents,
		HelperAdditionalTripCents: req.HelperAdditionalTripCents,
		SupervisorDailyCents:      req.SupervisorDailyCents,
		LunchUnitCents:            req.LunchUnitCents,
		VanDailyCents:             req.VanDailyCents,
		VanLunchCents:             req.VanLunchCents,
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return Settings{}, err
	}
	s.audit(ctx, actor, "EDITAR_TARIFAS", "Tarifas operacionais atualizadas")
	return s.repo.GetSettings(ctx)
}

// SubmitDailyRecord prices one operational day and writes the record, the
// helper roster and the four expense entries atomically. An Idempotency-Key,
// when supplied, makes retries of the same submission a conflict instead of
// a duplicate day.
func (s *Service) SubmitDailyRecord(ctx context.Context, actor shared.Actor, req SubmitDailyRecordRequest, idempotencyKey string) (DailyRecord, error) {
	if !actor.Can(shared.CapSubmitDailyRecord) {
		return DailyRecord{}, shared.ErrForbidden
	}

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return DailyRecord{}, shared.Refuse("data do dia operacional inválida: %s", req.WorkDate)
	}

	names, err := normalizeHelperNames(req.HelperNames)
	if err != nil {
		return DailyRecord{}, err
	}

	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		settings = defaultSettings
	} else if err != nil {
		return DailyRecord{}, err
	}

	breakdown, err := CalculateDailyCost(settings, req.Trips, len(names), req.Lunches)
	if err != nil {
		return DailyRecord{}, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			return DailyRecord{}, err
		}
	}

	rec := DailyRecord{
		WorkDate:            workDate,
		DriverID:            req.DriverID,
		Trips:               req.Trips,
		Lunches:             req.Lunches,
		HelperNames:         names,
		CostTruckCents:      breakdown.TruckCents,
		CostHelpersCents:    breakdown.HelpersCents,
		CostSupervisorCents: breakdown.SupervisorCents,
		CostLunchCents:      breakdown.LunchCents,
		TotalCents:          breakdown.TotalCents,
		CreatedBy:           actor.ID,
	}

	stored, err := s.repo.SubmitDailyRecord(ctx, rec, expenseEntries(rec, actor.ID))
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, idempotencyKey)
		}
		return DailyRecord{}, err
	}

	s.audit(ctx, actor, "REGISTRAR_DIA", fmt.Sprintf("Dia operacional %s registrado, total R$ %.2f",
		req.WorkDate, float64(stored.TotalCents)/100))
	return stored, nil
}

// expenseEntries builds the four ledger rows for a priced day.
func expenseEntries(rec DailyRecord, createdBy int64) []FinancialRecord {
	day := rec.WorkDate.Format("02/01/2006")
	entry := func(category string, amount int64) FinancialRecord {
		return FinancialRecord{
			RecordDate:  rec.WorkDate,
			Description: fmt.Sprintf("%s - dia operacional %s", category, day),
			Category:    category,
			Type:        TypeExpense,
			AmountCents: amount,
			Status:      PaymentPending,
			CreatedBy:   createdBy,
		}
	}
	return []FinancialRecord{
		entry(CategoryTruck, rec.CostTruckCents),
		entry(CategoryHelpers, rec.CostHelpersCents),
		entry(CategorySupervisors, rec.CostSupervisorCents),
		entry(CategoryLunch, rec.CostLunchCents),
	}
}

func normalizeHelperNames(raw []string) ([]string, error) {
	names := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		trimmed := strings.ToUpper(strings.TrimSpace(name))
		if trimmed == "" {
			return nil, shared.Refuse("nome de ajudante não pode ficar em branco")
		}
		if _, dup := seen[trimmed]; dup {
			return nil, shared.Refuse("ajudante %q informado mais de uma vez", trimmed)
		}
		seen[trimmed] = struct{}{}
		names = append(names, trimmed)
	}
	return names, nil
}

// DailyRecords lists the period's records. Non-admins only see days they submitted.
func (s *Service) DailyRecords(ctx context.Context, actor shared.Actor, from, to time.Time) ([]DailyRecord, error) {
	if !actor.Can(shared.CapFinance) && !actor.Can(shared.CapViewHelperPayouts) {
		return nil, shared.ErrForbidden
	}
	records, err := s.repo.ListDailyRecords(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return records, nil
	}
	own := make([]DailyRecord, 0, len(records))
	for _, rec := range records {
		if rec.CreatedBy == actor.ID {
			own = append(own, rec)
		}
	}
	return own, nil
}

// HelperPayouts splits each day's helper cost evenly among its roster and
// aggregates per helper over the period. Remainder cents never leak: the
// split shares of a day always sum to that day's helper cost.
func (s *Service) HelperPayouts(ctx context.Context, actor shared.Actor, from, to time.Time) ([]HelperPayout, error) {
	if !actor.Can(shared.CapViewHelperPayouts) {
		return nil, shared.ErrForbidden
	}
	records, err := s.DailyRecords(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*HelperPayout)
	for _, rec := range records {
		if len(rec.HelperNames) == 0 {
			continue
		}
		shares, err := SplitHelperShare(rec.CostHelpersCents, len(rec.HelperNames))
		if err != nil {
			return nil, err
		}
		for i, name := range rec.HelperNames {
			payout, ok := totals[name]
			if !ok {
				payout = &HelperPayout{HelperName: name}
				totals[name] = payout
			}
			payout.Days++
			payout.AmountCents += shares[i]
		}
	}

	payouts := make([]HelperPayout, 0, len(totals))
	for _, p := range totals {
		payouts = append(payouts, *p)
	}
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].HelperName < payouts[j].HelperName })
	return payouts, nil
}

// CreateRecord registers a manual ledger entry.
func (s *Service) CreateRecord(ctx context.Context, actor shared.Actor, req CreateFinancialRecordRequest) (FinancialRecord, error) {
	if !actor.Can(shared.CapFinance) {
		return FinancialRecord{}, shared.ErrForbidden
	}
	recordDate, err := time.Parse("2006-01-02", req.RecordDate)
	if err != nil {
		return FinancialRecord{}, shared.Refuse("data do lançamento inválida: %s", req.RecordDate)
	}
	entry := FinancialRecord{
		RecordDate:  recordDate,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Type:        req.Type,
		AmountCents: req.AmountCents,
		Status:      PaymentPending,
		CreatedBy:   actor.ID,
	}
	stored, err := s.repo.CreateFinancialRecord(ctx, entry)
	if err != nil {
		return FinancialRecord{}, err
	}
	s.audit(ctx, actor, "CRIAR_LANCAMENTO", fmt.Sprintf("Lançamento %q (%s) criado", stored.Description, stored.Type))
	return stored, nil
}

// Records lists ledger entries.
func (s *Service) Records(ctx context.Context, actor shared.Actor, req ListFinancialRecordsRequest) ([]FinancialRecord, error) {
	if !actor.Can(shared.CapFinance) {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListFinancialRecords(ctx, req)
}

// MarkPaid settles a ledger entry.
func (s *Service) MarkPaid(ctx context.Context, actor shared.Actor, id int64) (FinancialRecord, error) {
	return s.setStatus(ctx, actor, id, PaymentPaid, "QUITAR_LANCAMENTO")
}

// MarkPending reopens a ledger entry.
func (s *Service) MarkPending(ctx context.Context, actor shared.Actor, id int64) (FinancialRecord, error) {
	return s.setStatus(ctx, actor, id, PaymentPending, "REABRIR_LANCAMENTO")
}

func (s *Service) setStatus(ctx context.Context, actor shared.Actor, id int64, status PaymentStatus, action string) (FinancialRecord, error) {
	if !actor.Can(shared.CapFinance) {
		return FinancialRecord{}, shared.ErrForbidden
	}
	if err := s.repo.SetPaymentStatus(ctx, id, status); err != nil {
		return FinancialRecord{}, err
	}
	entry, err := s.repo.GetFinancialRecord(ctx, id)
	if err != nil {
		return FinancialRecord{}, err
	}
	s.audit(ctx, actor, action, fmt.Sprintf("Lançamento #%d marcado como %s", id, status))
	return entry, nil
}

// Totals sums income and expense over a period.
func (s *Service) PeriodTotals(ctx context.Context, actor shared.Actor, from, to time.Time) (incomeCents, expenseCents int64, err error) {
	if !actor.Can(shared.CapFinance) {
		return 0, 0, shared.ErrForbidden
	}
	return s.repo.Totals(ctx, from, to)
}

func (s *Service) audit(ctx context.Context, actor shared.Actor, action, details string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Record(ctx, actor, action, details)
}
