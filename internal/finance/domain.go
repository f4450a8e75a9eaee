package finance

import "time"

// Expense categories written by the daily record fan-out.
const (
	CategoryTruck       = "Caminhão"
	CategoryHelpers     = "Ajudantes"
	CategorySupervisors = "Supervisores"
	CategoryLunch       = "Almoço"
)

// RecordType distinguishes income from expense.
type RecordType string

const (
	TypeIncome  RecordType = "Receita"
	TypeExpense RecordType = "Despesa"
)

// PaymentStatus tracks settlement of a financial record.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Pago"
	PaymentPending PaymentStatus = "Pendente"
)

// Settings is the single row of operational rates, stored as BRL cents.
type Settings struct {
	TruckFirstTripCents       int64     `json:"truck_first_trip_cents"`
	TruckAdditionalTripCents  int64     `json:"truck_additional_trip_cents"`
	HelperBaseCents           int64     `json:"helper_base_cents"`
	HelperAdditionalTripCents int64     `json:"helper_additional_trip_cents"`
	SupervisorDailyCents      int64     `json:"supervisor_daily_cents"`
	LunchUnitCents            int64     `json:"lunch_unit_cents"`
	VanDailyCents             int64     `json:"van_daily_cents"`
	VanLunchCents             int64     `json:"van_lunch_cents"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Breakdown is the computed cost of one operational day, in BRL cents.
type Breakdown struct {
	TruckCents      int64 `json:"truck_cents"`
	HelpersCents    int64 `json:"helpers_cents"`
	SupervisorCents int64 `json:"supervisor_cents"`
	LunchCents      int64 `json:"lunch_cents"`
	TotalCents      int64 `json:"total_cents"`
}

// DailyRecord is a frozen snapshot of one day's operational costs.
// Records are immutable once created.
type DailyRecord struct {
	ID                  int64     `json:"id"`
	WorkDate            time.Time `json:"work_date"`
	DriverID            int64     `json:"driver_id"`
	Trips               int       `json:"trips"`
	Lunches             int       `json:"lunches"`
	HelperNames         []string  `json:"helper_names"`
	CostTruckCents      int64     `json:"cost_truck_cents"`
	CostHelpersCents    int64     `json:"cost_helpers_cents"`
	CostSupervisorCents int64     `json:"cost_supervisor_cents"`
	CostLunchCents      int64     `json:"cost_lunch_cents"`
	TotalCents          int64     `json:"total_cents"`
	CreatedBy           int64     `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// FinancialRecord is a ledger entry (manual or fan-out generated).
type FinancialRecord struct {
	ID            int64         `json:"id"`
	RecordDate    time.Time     `json:"record_date"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Type          RecordType    `json:"type"`
	AmountCents   int64         `json:"amount_cents"`
	Status        PaymentStatus `json:"status"`
	DailyRecordID *int64        `json:"daily_record_id,omitempty"`
	CreatedBy     int64         `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

// HelperPayout is a helper's derived share over a period.
type HelperPayout struct {
	HelperName  string `json:"helper_name"`
	Days        int    `json:"days"`
	AmountCents int64  `json:"amount_cents"`
}

// SubmitDailyRecordRequest registers one day of operation.
type SubmitDailyRecordRequest struct {
	WorkDate    string   `json:"work_date" validate:"required,datetime=2006-01-02"`
	DriverID    int64    `json:"driver_id" validate:"required,gt=0"`
	Trips       int      `json:"trips" validate:"required,gte=1,lte=20"`
	Lunches     int      `json:"lunches" validate:"gte=0,lte=100"`
	HelperNames []string `json:"helper_names" validate:"required,min=1,dive,required"`
}

// UpdateSettingsRequest replaces the rate table.
type UpdateSettingsRequest struct {
	TruckFirstTripCents       int64 `json:"truck_first_trip_cents" validate:"gte=0"`
	TruckAdditionalTripCents  int64 `json:"truck_additional_trip_cents" validate:"gte=0"`
	HelperBaseCents           int64 `json:"helper_base_cents" validate:"gte=0"`
	HelperAdditionalTripCents int64 `json:"helper_additional_trip_cents" validate:"gte=0"`
	SupervisorDailyCents      int64 `json:"supervisor_daily_cents" validate:"gte=0"`
	LunchUnitCents            int64 `json:"lunch_unit_cents" validate:"gte=0"`
	VanDailyCents             int64 `json:"van_daily_cents" validate:"gte=0"`
	VanLunchCents             int64 `json:"van_lunch_cents" validate:"gte=0"`
}

// CreateFinancialRecordRequest registers a manual ledger entry.
type CreateFinancialRecordRequest struct {
	RecordDate  string     `json:"record_date" validate:"required,datetime=2006-01-02"`
	Description string     `json:"description" validate:"required,max=300"`
	Category    string     `json:"category" validate:"required,max=100"`
	Type        RecordType `json:"type" validate:"required,oneof=Receita Despesa"`
	AmountCents int64      `json:"amount_cents" validate:"required,gt=0"`
}

// ListFinancialRecordsRequest filters the ledger.
type ListFinancialRecordsRequest struct {
	DateFrom *time.Time     `json:"date_from,omitempty"`
	DateTo   *time.Time     `json:"date_to,omitempty"`
	Type     *RecordType    `json:"type,omitempty"`
	Status   *PaymentStatus `json:"status,omitempty"`
	Limit    int            `json:"limit" validate:"gte=0,lte=500"`
	Offset   int            `json:"offset" validate:"gte=0"`
}
