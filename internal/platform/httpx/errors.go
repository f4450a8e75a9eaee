package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/telemim/telemim-ops/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Refusals carry their precondition text; persistence failures never leak
// internals past the title.
func RespondError(w http.ResponseWriter, err error) {
	var refusal *shared.Refusal
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &refusal):
		Problem(w, http.StatusUnprocessableEntity, "Operation Refused", refusal.Reason)
	case errors.As(err, &validationErrs):
		Problem(w, http.StatusBadRequest, "Validation Failed", validationErrs.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	default:
		Problem(w, http.StatusBadGateway, "Persistence Failure", "")
	}
}
