package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDiscoveryProxiesDescriptor(t *testing.T) {
	editor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hosting/discovery", r.URL.Path)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<wopi-discovery/>`))
	}))
	defer editor.Close()

	app := fiber.New()
	h := NewDiscoveryHandler(editor.URL, zap.NewNop())
	app.Get("/hosting/discovery", h.Proxy)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hosting/discovery", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, `<wopi-discovery/>`, string(body(t, resp)))
}

func TestDiscoveryUnreachableEditor(t *testing.T) {
	app := fiber.New()
	h := NewDiscoveryHandler("http://127.0.0.1:1", zap.NewNop())
	app.Get("/hosting/discovery", h.Proxy)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hosting/discovery", nil), 15000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestDiscoveryEditorError(t *testing.T) {
	editor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer editor.Close()

	app := fiber.New()
	h := NewDiscoveryHandler(editor.URL, zap.NewNop())
	app.Get("/hosting/discovery", h.Proxy)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hosting/discovery", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
