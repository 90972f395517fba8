package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"mediadocs/internal/logging"
)

// LoggerLocalKey holds the request-scoped *slog.Logger in Fiber's context locals.
const LoggerLocalKey = "logger"

// Logger logs each HTTP request as one JSON line with request_id, method,
// path, status and latency (milliseconds, float). Handlers can pick up the
// same logger, already tagged with request_id, through RequestLogger.
func Logger(base *slog.Logger) fiber.Handler {
	if base == nil {
		base = logging.Discard()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		reqLogger := base.With("request_id", rid)
		c.Locals(LoggerLocalKey, reqLogger)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		reqLogger.Log(c.UserContext(), level, "http_request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds())/1000,
		)
		return err
	}
}

// LoggerWithWriter is Logger over a fresh JSON logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}

// RequestLogger returns the logger stored by Logger, or a discarding one.
func RequestLogger(c *fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals(LoggerLocalKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.Discard()
}
