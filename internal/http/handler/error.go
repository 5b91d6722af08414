package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/math-u-t/litedrive/internal/http/middleware"
	"github.com/math-u-t/litedrive/internal/service"
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

// writeServiceError maps a file-flow error onto status, code and a safe message.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "missing required fields")
	case errors.Is(err, service.ErrInvalidFileData):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_DATA", "file data must be base64")
	case errors.Is(err, service.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large (max 10MB)")
	case errors.Is(err, service.ErrUnsupportedType):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "unsupported file type")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrStorageWrite):
		return writeError(c, fiber.StatusInternalServerError, "STORAGE_WRITE_FAILED", "upload to storage failed")
	case errors.Is(err, service.ErrMetadataWrite):
		return writeError(c, fiber.StatusInternalServerError, "METADATA_WRITE_FAILED", "failed to save file metadata")
	case errors.Is(err, service.ErrDeleteFailed):
		return writeError(c, fiber.StatusInternalServerError, "DELETE_FAILED", "delete failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
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
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "forbidden")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
