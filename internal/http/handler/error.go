package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docanalyzer/internal/extract"
	"docanalyzer/internal/http/middleware"
	"docanalyzer/internal/llm"
	"docanalyzer/internal/model"
	"docanalyzer/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
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
// - code: machine-readable short error code (e.g., "FILE_REQUIRED", "INVALID_LLM_RESPONSE")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, "")
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message, details string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: requestIDFromCtx(c),
	})
}

// writeServiceError is the single place where domain errors become HTTP responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	var decodeErr *llm.DecodeError
	switch {
	case errors.Is(err, service.ErrMissingFile):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrMissingLanguage):
		return writeError(c, fiber.StatusBadRequest, "TARGET_LANGUAGE_REQUIRED", "targetLanguage is required")
	case errors.Is(err, service.ErrNoOutputs):
		return writeError(c, fiber.StatusBadRequest, "OUTPUTS_REQUIRED", "at least one output must be selected")
	case errors.Is(err, model.ErrUnknownOutput):
		return writeError(c, fiber.StatusBadRequest, "INVALID_OUTPUT", err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrTooManyCrossFiles):
		return writeError(c, fiber.StatusBadRequest, "TOO_MANY_CROSS_FILES", err.Error())
	case errors.Is(err, extract.ErrUnsupportedType):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "only PDF and DOCX files are supported")
	case errors.Is(err, extract.ErrExtractionFailed):
		return writeError(c, fiber.StatusBadRequest, "EXTRACTION_FAILED", "could not read text from the document")
	case errors.Is(err, service.ErrEmptyDocument):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_DOCUMENT", "no text could be extracted from the document")
	case errors.Is(err, service.ErrUnsupportedFormat):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FORMAT", err.Error())
	case errors.Is(err, service.ErrFormatNotAllowed):
		return writeError(c, fiber.StatusBadRequest, "FORMAT_NOT_ALLOWED", err.Error())
	case errors.Is(err, service.ErrFieldEmpty):
		return writeError(c, fiber.StatusNotFound, "FIELD_EMPTY", "the selected field has no content")
	case errors.Is(err, service.ErrProviderNotConfigured):
		return writeError(c, fiber.StatusInternalServerError, "SERVER_MISCONFIGURED", "the analysis provider is not configured")
	case errors.As(err, &decodeErr):
		return writeErrorDetails(c, fiber.StatusBadGateway, "INVALID_LLM_RESPONSE", "the model returned an invalid response", decodeErr.Snippet)
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "REQUEST_TOO_LARGE", "request body is too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
