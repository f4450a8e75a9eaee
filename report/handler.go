package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/platform/httpx"
	"github.com/telemim/telemim-ops/internal/shared"
)

// MoveSource fetches moves for export.
type MoveSource interface {
	Get(ctx context.Context, actor shared.Actor, id int64) (*moves.Move, error)
}

// Handler manages PDF export endpoints.
type Handler struct {
	client *Client
	moves  MoveSource
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, moveSource MoveSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, moves: moveSource, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/moves/{id}/pdf", h.moveSheet)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) moveSheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}

	move, err := h.moves.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := BuildMoveSheet(*move)
	if err != nil {
		h.logger.Error("build move sheet", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Render Failure", "")
		return
	}

	pdf, err := h.client.RenderPDF(r.Context(), html)
	if err != nil {
		h.logger.Error("render move sheet pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=mudanca-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
