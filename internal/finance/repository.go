package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemim/telemim-ops/internal/platform/db"
	"github.com/telemim/telemim-ops/internal/shared"
)

// Repository persists settings, daily records and the financial ledger.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const settingsColumns = `truck_first_trip_cents, truck_additional_trip_cents,
	helper_base_cents, helper_additional_trip_cents, supervisor_daily_cents,
	lunch_unit_cents, van_daily_cents, van_lunch_cents, updated_at`

// GetSettings returns the single rate row, seeding defaults when absent.
func (r *Repository) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM finance_settings WHERE id = 1`).Scan(
		&s.TruckFirstTripCents, &s.TruckAdditionalTripCents,
		&s.HelperBaseCents, &s.HelperAdditionalTripCents, &s.SupervisorDailyCents,
		&s.LunchUnitCents, &s.VanDailyCents, &s.VanLunchCents, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, shared.ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("finance: get settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the single rate row.
func (r *Repository) SaveSettings(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO finance_settings (id, truck_first_trip_cents, truck_additional_trip_cents,
			helper_base_cents, helper_additional_trip_cents, supervisor_daily_cents,
			lunch_unit_cents, van_daily_cents, van_lunch_cents, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET
			truck_first_trip_cents = EXCLUDED.truck_first_trip_cents,
			truck_additional_trip_cents = EXCLUDED.truck_additional_trip_cents,
			helper_base_cents = EXCLUDED.helper_base_cents,
			helper_additional_trip_cents = EXCLUDED.helper_additional_trip_cents,
			supervisor_daily_cents = EXCLUDED.supervisor_daily_cents,
			lunch_unit_cents = EXCLUDED.lunch_unit_cents,
			van_daily_cents = EXCLUDED.van_daily_cents,
			van_lunch_cents = EXCLUDED.van_lunch_cents,
			updated_at = now()`,
		s.TruckFirstTripCents, s.TruckAdditionalTripCents,
		s.HelperBaseCents, s.HelperAdditionalTripCents, s.SupervisorDailyCents,
		s.LunchUnitCents, s.VanDailyCents, s.VanLunchCents,
	)
	if err != nil {
		return fmt.Errorf("finance: save settings: %w", err)
	}
	return nil
}

// SubmitDailyRecord creates the daily record, its roster rows and the four
// ledger entries in one transaction. A helper already rostered for the date
// trips the unique constraint and voids the whole submission.
func (r *Repository) SubmitDailyRecord(ctx context.Context, rec DailyRecord, entries []FinancialRecord) (DailyRecord, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO daily_records (work_date, driver_id, trips, lunches, helper_names,
				cost_truck_cents, cost_helpers_cents, cost_supervisor_cents, cost_lunch_cents,
				total_cents, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at`,
			rec.WorkDate, rec.DriverID, rec.Trips, rec.Lunches, rec.HelperNames,
			rec.CostTruckCents, rec.CostHelpersCents, rec.CostSupervisorCents, rec.CostLunchCents,
			rec.TotalCents, rec.CreatedBy,
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("finance: insert daily record: %w", err)
		}

		for _, name := range rec.HelperNames {
			_, err := tx.Exec(ctx, `
				INSERT INTO daily_rosters (work_date, helper_name, daily_record_id)
				VALUES ($1, $2, $3)`,
				rec.WorkDate, name, rec.ID,
			)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23505" {
					return shared.Refuse("ajudante %q já está escalado em %s", name, rec.WorkDate.Format("2006-01-02"))
				}
				return fmt.Errorf("finance: insert roster entry: %w", err)
			}
		}

		for _, e := range entries {
			_, err := tx.Exec(ctx, `
				INSERT INTO financial_records (record_date, description, category, type,
					amount_cents, status, daily_record_id, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				e.RecordDate, e.Description, e.Category, e.Type,
				e.AmountCents, e.Status, rec.ID, e.CreatedBy,
			)
			if err != nil {
				return fmt.Errorf("finance: insert ledger entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return DailyRecord{}, err
	}
	return rec, nil
}

const dailyRecordColumns = `id, work_date, driver_id, trips, lunches, helper_names,
	cost_truck_cents, cost_helpers_cents, cost_supervisor_cents, cost_lunch_cents,
	total_cents, created_by, created_at`

func scanDailyRecord(row pgx.Row) (DailyRecord, error) {
	var rec DailyRecord
	err := row.Scan(
		&rec.ID, &rec.WorkDate, &rec.DriverID, &rec.Trips, &rec.Lunches, &rec.HelperNames,
		&rec.CostTruckCents, &rec.CostHelpersCents, &rec.CostSupervisorCents, &rec.CostLunchCents,
		&rec.TotalCents, &rec.CreatedBy, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyRecord{}, shared.ErrNotFound
	}
	if err != nil {
		return DailyRecord{}, fmt.Errorf("finance: scan daily record: %w", err)
	}
	return rec, nil
}

// GetDailyRecord returns one daily record.
func (r *Repository) GetDailyRecord(ctx context.Context, id int64) (DailyRecord, error) {
	return scanDailyRecord(r.pool.QueryRow(ctx,
		`SELECT `+dailyRecordColumns+` FROM daily_records WHERE id = $1`, id))
}

// ListDailyRecords returns records within the period, newest first.
func (r *Repository) ListDailyRecords(ctx context.Context, from, to time.Time) ([]DailyRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+dailyRecordColumns+`
		FROM daily_records
		WHERE work_date >= $1 AND work_date <= $2
		ORDER BY work_date DESC, id DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("finance: list daily records: %w", err)
	}
	defer rows.Close()

	records := make([]DailyRecord, 0)
	for rows.Next() {
		rec, err := scanDailyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const ledgerColumns = `id, record_date, description, category, type,
	amount_cents, status, daily_record_id, created_by, created_at`

func scanFinancialRecord(row pgx.Row) (FinancialRecord, error) {
	var e FinancialRecord
	err := row.Scan(
		&e.ID, &e.RecordDate, &e.Description, &e.Category, &e.Type,
		&e.AmountCents, &e.Status, &e.DailyRecordID, &e.CreatedBy, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinancialRecord{}, shared.ErrNotFound
	}
	if err != nil {
		return FinancialRecord{}, fmt.Errorf("finance: scan ledger entry: %w", err)
	}
	return e, nil
}

// CreateFinancialRecord inserts a manual ledger entry.
func (r *Repository) CreateFinancialRecord(ctx context.Context, e FinancialRecord) (FinancialRecord, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO financial_records (record_date, description, category, type,
			amount_cents, status, daily_record_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		e.RecordDate, e.Description, e.Category, e.Type,
		e.AmountCents, e.Status, e.DailyRecordID, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return FinancialRecord{}, fmt.Errorf("finance: create ledger entry: %w", err)
	}
	return e, nil
}

// GetFinancialRecord returns one ledger entry.
func (r *Repository) GetFinancialRecord(ctx context.Context, id int64) (FinancialRecord, error) {
	return scanFinancialRecord(r.pool.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM financial_records WHERE id = $1`, id))
}

// ListFinancialRecords returns ledger entries matching the filters, newest first.
func (r *Repository) ListFinancialRecords(ctx context.Context, req ListFinancialRecordsRequest) ([]FinancialRecord, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)

	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if req.DateFrom != nil {
		add("record_date >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		add("record_date <= $%d", *req.DateTo)
	}
	if req.Type != nil {
		add("type = $%d", *req.Type)
	}
	if req.Status != nil {
		add("status = $%d", *req.Status)
	}

	query := `SELECT ` + ledgerColumns + ` FROM financial_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY record_date DESC, id DESC"

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, req.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finance: list ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]FinancialRecord, 0)
	for rows.Next() {
		e, err := scanFinancialRecord(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetPaymentStatus flips a ledger entry between Pago and Pendente.
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE financial_records SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("finance: set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Totals sums income and expense over a period.
func (r *Repository) Totals(ctx context.Context, from, to time.Time) (incomeCents, expenseCents int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE type = 'Receita'), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE type = 'Despesa'), 0)
		FROM financial_records
		WHERE record_date >= $1 AND record_date <= $2`,
		from, to,
	).Scan(&incomeCents, &expenseCents)
	if err != nil {
		return 0, 0, fmt.Errorf("finance: totals: %w", err)
	}
	return incomeCents, expenseCents, nil
}
