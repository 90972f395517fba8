package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mediadocs/internal/apperror"
	"mediadocs/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "DOCUMENT_NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError renders domain errors as-is. Anything else is logged
// with the request id and reported as a bare 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Status >= fiber.StatusInternalServerError || appErr.Code == apperror.ErrPDFProcessingFailed.Code {
			middleware.RequestLogger(c).ErrorContext(c.UserContext(), "request_failed",
				"code", appErr.Code, "error", err.Error())
		}
		return writeErrorDetails(c, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
	}
	middleware.RequestLogger(c).ErrorContext(c.UserContext(), "request_failed", "error", err.Error())
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, apperror.ErrFileTooLarge.Code, apperror.ErrFileTooLarge.Message)
		default:
			middleware.RequestLogger(c).ErrorContext(c.UserContext(), "unhandled_error", "error", err.Error())
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
