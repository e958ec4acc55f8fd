package middleware

import (
	"strings"

	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration. PublicPrefix marks routes any origin may read without credentials.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
	PublicPrefix  string
}

const (
	corsAllowHeaders = "Content-Type, dev-password, X-Trace-Id"
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// CORS allows credentialed requests from origins ending with AllowedSuffix, from localhost,
// or carrying the dev-password header. Requests without an Origin pass through.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		if cfg.PublicPrefix != "" && strings.HasPrefix(c.Path(), cfg.PublicPrefix) {
			c.Set("Access-Control-Allow-Origin", "*")
			c.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if c.Method() == fiber.MethodOptions {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return c.Next()
		}
		if !originAllowed(c, cfg, origin) {
			return response.Forbidden(c, "Not allowed by CORS")
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Set("Access-Control-Allow-Methods", corsAllowMethods)
		c.Vary(fiber.HeaderOrigin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func originAllowed(c *fiber.Ctx, cfg CORSConfig, origin string) bool {
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		// Browsers do not send custom headers on preflight, so local preflights are let through.
		return c.Method() == fiber.MethodOptions || (cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword)
	}
	if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
		return true
	}
	return cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword
}
