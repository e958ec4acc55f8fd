package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs request entry at debug and exit with status, duration and trace ID.
// Health probes are not logged.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health/json" {
			return c.Next()
		}
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		log.Debug().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("request started")
		err := c.Next()

		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if u, ok := CurrentUser(c); ok {
			ev = ev.Str("user_id", u.UserID).Str("role", u.Role)
		}
		ev.Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request finished")
		return err
	}
}
