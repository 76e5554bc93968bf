package response

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseMessageModel struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ResponseErrorModel struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ResponseValidationModel struct {
	Code   int          `json:"code"`
	Errors []FieldError `json:"errors"`
}

// ResponseData writes data as the body without an envelope, list endpoints return bare arrays.
func ResponseData(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

func ResponseOK(c *fiber.Ctx, message string) error {
	return ResponseMessage(c, message, fiber.StatusOK)
}

func ResponseCreated(c *fiber.Ctx, message string) error {
	return ResponseMessage(c, message, fiber.StatusCreated)
}

func ResponseMessage(c *fiber.Ctx, message string, code int) error {
	response := ResponseMessageModel{
		Code:    code,
		Message: message,
	}

	return c.Status(code).JSON(response)
}

func ResponseError(c *fiber.Ctx, message string, code int) error {
	response := ResponseErrorModel{
		Code:    code,
		Message: message,
	}

	return c.Status(code).JSON(response)
}

// ResponseErrorDetail keeps the upstream or internal error text in the error field.
func ResponseErrorDetail(c *fiber.Ctx, message string, err error, code int) error {
	response := ResponseErrorModel{
		Code:    code,
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	return c.Status(code).JSON(response)
}

func ResponseValidationErrors(c *fiber.Ctx, errors []FieldError) error {
	response := ResponseValidationModel{
		Code:   fiber.StatusBadRequest,
		Errors: errors,
	}

	return c.Status(fiber.StatusBadRequest).JSON(response)
}
