package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"

	"github.com/arzan03/DocBridge/internal/config"
)

// SecurityHeaders applies the response header policy: clickjacking and
// MIME-sniffing protection, strict referrer policy, disabled browser
// features, no-store caching on API and protocol responses, and HSTS in
// production.
func SecurityHeaders(cfg config.Config) fiber.Handler {
	hsts := 0
	if cfg.Production() {
		hsts = 31536000
	}
	secure := helmet.New(helmet.Config{
		XFrameOptions:             "DENY",
		ContentTypeNosniff:        "nosniff",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionPolicy:          "camera=(), microphone=(), geolocation=()",
		HSTSMaxAge:                hsts,
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "",
		CrossOriginResourcePolicy: "same-site",
	})

	return func(c *fiber.Ctx) error {
		if err := secure(c); err != nil {
			return err
		}
		p := c.Path()
		if strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/files") {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		return nil
	}
}

// CORS grants cross-origin access with credentials only to the configured
// allow-list; localhost origins are additionally allowed outside production.
func CORS(cfg config.Config) fiber.Handler {
	allowed := make(map[string]bool, len(cfg.CORSOrigins))
	for _, origin := range cfg.CORSOrigins {
		allowed[origin] = true
	}
	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			if allowed[strings.TrimRight(origin, "/")] {
				return true
			}
			if cfg.Production() {
				return false
			}
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:") ||
				origin == "http://localhost" || origin == "http://127.0.0.1"
		},
		AllowCredentials: true,
		AllowHeaders:     "Authorization, Content-Type, X-WOPI-Override, X-WOPI-Lock, X-WOPI-OldLock, X-WOPI-SuggestedTarget, X-WOPI-RelativeTarget, X-WOPI-RequestedName",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
	})
}
