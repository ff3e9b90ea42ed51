package serverutils

import (
	"errors"

	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"

	"github.com/gofiber/fiber/v2"
)

// ValidationPayload is the body of a 422: the section and its problems.
type ValidationPayload struct {
	Section  string           `json:"section"`
	Problems []survey.Problem `json:"problems"`
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope with the matching status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// WriteError is also used as fiber.Config.ErrorHandler.
func WriteError(ctx *fiber.Ctx, err error) error {
	var verr *audit.ValidationError
	if errors.As(err, &verr) {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponseWithData(
			fiber.StatusUnprocessableEntity,
			err.Error(),
			ValidationPayload{Section: verr.Section, Problems: verr.Problems},
		))
	}
	var rerr *RequestValidationError
	if errors.As(err, &rerr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponseWithData(fiber.StatusBadRequest, err.Error(), rerr.Fields))
	}

	code := StatusCode(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.Is(err, audit.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, audit.ErrValidationFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, audit.ErrSchemaUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, audit.ErrPersistenceFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, audit.ErrInvalidTransition), errors.Is(err, audit.ErrAlreadySubmitted):
		return fiber.StatusConflict
	case errors.Is(err, audit.ErrUnknownPhase),
		errors.Is(err, audit.ErrUnknownProject),
		errors.Is(err, audit.ErrUnknownQuestion),
		errors.Is(err, audit.ErrInvalidAnswer):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
