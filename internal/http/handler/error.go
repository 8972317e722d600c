package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/concierge"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// respondError translates a service error into the standardized envelope:
// validation problems are 400 with the validation message, missing
// resources 404, a persistence failure 502 (the backing store rejected or
// was unreachable) and an open concierge circuit 503. Anything else is an
// opaque 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
	}
	if errors.Is(err, domain.ErrValidation) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid input")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	}
	if errors.Is(err, concierge.ErrUnavailable) {
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "concierge temporarily unavailable")
	}
	if errors.Is(err, domain.ErrPersistence) {
		return writeError(c, fiber.StatusBadGateway, "STORE_ERROR", "backing store rejected the operation")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
