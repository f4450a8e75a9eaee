package routing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, upstream http.HandlerFunc) *chi.Mux {
	t.Helper()
	handler := NewHandler(nil, newTestClient(t, upstream))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("returns the model estimate", func(t *testing.T) {
		var prompt string
		router := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			prompt = string(body)
			w.Write([]byte(modelReply(`{"distance": "15 km", "duration": "30 min", "path_description": "Via centro", "suggestion": "Sair cedo"}`)))
		})

		req := httptest.NewRequest(http.MethodPost, "/analyze",
			strings.NewReader(`{"origin":"Rua A, 10","destination":"Av. B, 200","stops":["Depósito Central"]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "15 km")
		assert.Contains(t, rec.Body.String(), "Sair cedo")
		assert.Contains(t, prompt, "Depósito Central")
	})

	t.Run("rejects a payload without origin", func(t *testing.T) {
		router := newTestHandler(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Fatal("upstream should not be called")
		})

		req := httptest.NewRequest(http.MethodPost, "/analyze",
			strings.NewReader(`{"destination":"Av. B, 200"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("degrades to the placeholder when the model is down", func(t *testing.T) {
		router := newTestHandler(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		req := httptest.NewRequest(http.MethodPost, "/analyze",
			strings.NewReader(`{"origin":"Rua A","destination":"Rua B"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Erro ao calcular rota via IA.")
	})
}
