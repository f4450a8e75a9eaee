package app

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/telemim/telemim-ops/internal/auth"
	"github.com/telemim/telemim-ops/internal/finance"
	"github.com/telemim/telemim-ops/internal/helpers"
	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/notify"
	"github.com/telemim/telemim-ops/internal/platform/httpx"
	"github.com/telemim/telemim-ops/internal/reports"
	"github.com/telemim/telemim-ops/internal/residents"
	"github.com/telemim/telemim-ops/internal/routing"
	"github.com/telemim/telemim-ops/internal/shared"
	"github.com/telemim/telemim-ops/internal/staff"
	"github.com/telemim/telemim-ops/jobs"
	"github.com/telemim/telemim-ops/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	LoadActor      ActorLoader
	Audit          *shared.AuditLogger

	AuthHandler      *auth.Handler
	StaffHandler     *staff.Handler
	ResidentsHandler *residents.Handler
	MovesHandler     *moves.Handler
	HelpersHandler   *helpers.Handler
	FinanceHandler   *finance.Handler
	NotifyHandler    *notify.Handler
	ReportsHandler   *reports.Handler
	RoutingHandler   *routing.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Telemim defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		LoadActor:      params.LoadActor,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireActor)

		r.Route("/staff", func(r chi.Router) {
			r.Use(RequireCapability(shared.CapManageStaff))
			params.StaffHandler.MountRoutes(r)
		})
		r.Route("/residents", func(r chi.Router) {
			r.Use(RequireCapability(shared.CapManageResidents))
			params.ResidentsHandler.MountRoutes(r)
		})
		r.Route("/moves", func(r chi.Router) {
			params.MovesHandler.MountRoutes(r)
		})
		r.Route("/helpers", func(r chi.Router) {
			r.Use(RequireCapability(shared.CapManageHelpers))
			params.HelpersHandler.MountRoutes(r)
		})
		r.Route("/finance", func(r chi.Router) {
			params.FinanceHandler.MountRoutes(r)
		})
		r.Route("/notifications", func(r chi.Router) {
			params.NotifyHandler.MountRoutes(r)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Use(RequireCapability(shared.CapViewReports))
			params.ReportsHandler.MountRoutes(r)
		})
		if params.RoutingHandler != nil {
			r.Route("/routing", func(r chi.Router) {
				r.Use(RequireCapability(shared.CapManageMoves))
				params.RoutingHandler.MountRoutes(r)
			})
		}
		if params.ReportHandler != nil {
			r.Route("/export", func(r chi.Router) {
				params.ReportHandler.MountRoutes(r)
			})
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(RequireCapability(shared.CapManageStaff))
				params.JobHandler.MountRoutes(r)
			})
		}

		r.With(RequireCapability(shared.CapViewHistory)).
			Get("/history", historyEndpoint(params.Audit))
	})

	return r
}

// historyEndpoint serves the recent audit trail.
func historyEndpoint(audit *shared.AuditLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Invalid Limit", "")
				return
			}
			limit = parsed
		}
		entries, err := audit.Recent(r.Context(), limit)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"history": entries})
	}
}
