package response

import (
	"errors"

	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrExternalIO):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Messages returned in place of internal error details.
const (
	MessageInternal      = "Error interno del servidor"
	MessageConfiguration = "Error de configuración del servidor"
)

// FromError sends err in the standard error format. Validation and not-found messages are
// shown to the caller; anything else is replaced by a generic message.
func FromError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, apperrors.ErrConfiguration):
		message = MessageConfiguration
	case code >= fiber.StatusInternalServerError:
		message = MessageInternal
	}
	return Error(c, message, code, nil)
}
