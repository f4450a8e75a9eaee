package finance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telemim/telemim-ops/internal/platform/httpx"
	"github.com/telemim/telemim-ops/internal/shared"
)

// Handler manages finance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.settings)
	r.Put("/settings", h.updateSettings)
	r.Post("/daily-records", h.submitDailyRecord)
	r.Get("/daily-records", h.dailyRecords)
	r.Get("/helper-payouts", h.helperPayouts)
	r.Get("/records", h.records)
	r.Post("/records", h.createRecord)
	r.Post("/records/{id}/pay", h.markPaid)
	r.Post("/records/{id}/reopen", h.markPending)
	r.Get("/totals", h.totals)
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	settings, err := h.service.Settings(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) submitDailyRecord(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req SubmitDailyRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.SubmitDailyRecord(r.Context(), actor, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

// periodFromQuery reads from/to query parameters, defaulting to the
// current month.
func periodFromQuery(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

func (h *Handler) dailyRecords(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	from, to, err := periodFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	records, err := h.service.DailyRecords(r.Context(), actor, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"daily_records": records})
}

func (h *Handler) helperPayouts(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	from, to, err := periodFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	payouts, err := h.service.HelperPayouts(r.Context(), actor, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payouts": payouts})
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	req := ListFinancialRecordsRequest{}
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
			return
		}
		req.DateFrom = &parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
			return
		}
		req.DateTo = &parsed
	}
	if raw := q.Get("type"); raw != "" {
		t := RecordType(raw)
		req.Type = &t
	}
	if raw := q.Get("status"); raw != "" {
		st := PaymentStatus(raw)
		req.Status = &st
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Limit", "")
			return
		}
		req.Limit = limit
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Records(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": entries})
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateFinancialRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.CreateRecord(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, (*Service).MarkPaid)
}

func (h *Handler) markPending(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, (*Service).MarkPending)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, apply func(*Service, context.Context, shared.Actor, int64) (FinancialRecord, error)) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	entry, err := apply(h.service, r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	from, to, err := periodFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	income, expense, err := h.service.PeriodTotals(r.Context(), actor, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"income_cents":  income,
		"expense_cents": expense,
		"balance_cents": income - expense,
	})
}
