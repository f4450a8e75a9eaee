package routing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telemim/telemim-ops/internal/platform/httpx"
)

// Handler exposes route analysis over HTTP.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client, validate: validator.New()}
}

// MountRoutes registers routing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/analyze", h.analyze)
}

// AnalyzeRequest carries the addresses of a planned route.
type AnalyzeRequest struct {
	Origin      string   `json:"origin" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
	Stops       []string `json:"stops" validate:"dive,required"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	estimate := h.client.AnalyzeRoute(r.Context(), req.Origin, req.Destination, req.Stops)
	httpx.JSON(w, http.StatusOK, estimate)
}
