package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ServerError carries the route-specific message for the 500 envelope:
// {message, error, details?}.
type ServerError struct {
	Message string
	Details interface{}
	Err     error
}

func (e *ServerError) Error() string {
	return e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func NewServerError(message string, err error) *ServerError {
	return &ServerError{Message: message, Err: err}
}

// ErrorHandlerMiddleware is the outermost boundary: anything a controller did
// not handle becomes a JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var srvErr *ServerError
		if errors.As(err, &srvErr) {
			body := fiber.Map{
				"message": srvErr.Message,
				"error":   srvErr.Err.Error(),
			}
			if srvErr.Details != nil {
				body["details"] = srvErr.Details
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
				"error":   fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
