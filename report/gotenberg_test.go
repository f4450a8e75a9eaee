package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPDF(t *testing.T) {
	t.Run("posts the sheet with page options", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))

			_, header, err := r.FormFile("files")
			require.NoError(t, err)
			assert.Equal(t, "index.html", header.Filename)
			assert.Equal(t, "8.27", r.FormValue("paperWidth"))
			assert.Equal(t, "0.4", r.FormValue("marginTop"))

			w.Write([]byte("%PDF-1.7 fake"))
		}))
		defer server.Close()

		client := NewClient(server.URL + "/")
		pdf, err := client.RenderPDF(context.Background(), "<html><body>Mudança #7</body></html>")
		require.NoError(t, err)
		assert.Contains(t, string(pdf), "%PDF")
	})

	t.Run("surfaces upstream failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.RenderPDF(context.Background(), "<html></html>")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL).Ping(context.Background()))
}
