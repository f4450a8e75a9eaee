package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/telemim/telemim-ops/internal/shared"
)

func newTestRouter(t *testing.T, loginHit *bool) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "telemim_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)),
		SessionManager: sessions,
		CSRFManager:    csrf,
	}) {
		r.Use(mw)
	}

	r.Get("/auth/csrf", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		token, err := csrf.EnsureToken(req.Context(), sess)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{"csrf_token": token})
	})
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		*loginHit = true
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestFreshClientCanLogin(t *testing.T) {
	var loginHit bool
	router := newTestRouter(t, &loginHit)
	srv := httptest.NewServer(router)
	defer srv.Close()

	jar := newCookieClient(t)

	// First contact: anonymous GET hands out the session cookie and token.
	resp, err := jar.Get(srv.URL + "/auth/csrf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"csrf_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/login", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set(shared.CSRFHeaderName, body.Token)
	resp2, err := jar.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()

	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.True(t, loginHit, "login handler should have been reached")
}

func TestLoginWithoutTokenForbidden(t *testing.T) {
	var loginHit bool
	router := newTestRouter(t, &loginHit)
	srv := httptest.NewServer(router)
	defer srv.Close()

	jar := newCookieClient(t)

	resp, err := jar.Get(srv.URL + "/auth/csrf")
	require.NoError(t, err)
	resp.Body.Close()

	resp2, err := jar.Post(srv.URL+"/auth/login", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp2.Body.Close()

	require.Equal(t, http.StatusForbidden, resp2.StatusCode)
	require.False(t, loginHit)
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}
