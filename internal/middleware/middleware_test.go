package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzan03/DocBridge/internal/config"
	"github.com/arzan03/DocBridge/internal/ratelimit"
)

func devConfig() config.Config {
	return config.Config{
		Environment: "development",
		CORSOrigins: []string{"https://app.example.com"},
	}
}

func prodConfig() config.Config {
	cfg := devConfig()
	cfg.Environment = "production"
	return cfg
}

func newHeaderApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Use(SecurityHeaders(cfg))
	app.Get("/api/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/public/page", func(c *fiber.Ctx) error { return c.SendString("page") })
	return app
}

func TestSecurityHeadersApplied(t *testing.T) {
	app := newHeaderApp(devConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"), "no HSTS outside production")
}

func TestNoStoreOnlyOnProtocolPaths(t *testing.T) {
	app := newHeaderApp(devConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public/page", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}

func TestHSTSInProduction(t *testing.T) {
	app := newHeaderApp(prodConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Strict-Transport-Security"), "max-age=31536000")
}

func corsApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Use(CORS(cfg))
	app.Get("/api/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func corsCheck(t *testing.T, app *fiber.App, origin string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(fiber.HeaderOrigin, origin)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.Header.Get(fiber.HeaderAccessControlAllowOrigin)
}

func TestCORSAllowList(t *testing.T) {
	app := corsApp(prodConfig())

	assert.Equal(t, "https://app.example.com", corsCheck(t, app, "https://app.example.com"))
	assert.Empty(t, corsCheck(t, app, "https://evil.example.com"))
	assert.Empty(t, corsCheck(t, app, "http://localhost:3000"), "localhost is not allowed in production")
}

func TestCORSLocalhostInDevelopment(t *testing.T) {
	app := corsApp(devConfig())

	assert.Equal(t, "http://localhost:3000", corsCheck(t, app, "http://localhost:3000"))
	assert.Empty(t, corsCheck(t, app, "https://evil.example.com"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(time.Minute, map[ratelimit.Class]int{ratelimit.ClassCreate: 2})
	defer limiter.Close()

	app := fiber.New()
	app.Post("/api/create", RateLimit(limiter, ratelimit.ClassCreate), func(c *fiber.Ctx) error {
		return c.SendString("created")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/create", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/create", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}
