package moves

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telemim/telemim-ops/internal/platform/httpx"
	"github.com/telemim/telemim-ops/internal/shared"
)

// Handler manages move endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers move routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/status", h.advanceStatus)
	r.Post("/{id}/volume", h.setVolume)
	r.Post("/{id}/volume/approve", h.approveVolume)
	r.Post("/{id}/volume/contest", h.contestVolume)
	r.Post("/{id}/assignment", h.confirmAssignment)
}

func (h *Handler) moveID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	req := ListMovesRequest{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := MoveStatus(v)
		if !status.IsValid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Status", "unknown status "+v)
			return
		}
		req.Status = &status
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateFrom = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.DateTo = &t
		}
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, err := h.service.List(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"moves": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	move, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateMoveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	move, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.logger.Warn("create move", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, move)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req UpdateMoveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	move, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req AdvanceStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	move, err := h.service.AdvanceStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) setVolume(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req SetVolumeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	move, err := h.service.SetVolume(r.Context(), actor, id, req.ItemsVolume)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) approveVolume(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	move, err := h.service.ApproveVolume(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) contestVolume(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req ContestVolumeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	move, err := h.service.ContestVolume(r.Context(), actor, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}

func (h *Handler) confirmAssignment(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, ok := h.moveID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req ConfirmAssignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	move, err := h.service.ConfirmAssignment(r.Context(), actor, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, move)
}
