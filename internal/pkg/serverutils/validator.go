package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks DTO validate tags and maps violations to a 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		field := errs[0]
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("field '%s' failed on '%s' validation", field.Field(), field.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
