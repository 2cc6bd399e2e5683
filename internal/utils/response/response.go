package response

import (
	apperrors "remit/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

// Created writes a 201 with the given body.
func Created(c *fiber.Ctx, body fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// DomainError writes err with its status and stable code.
func DomainError(c *fiber.Ctx, err *apperrors.DomainError) error {
	return c.Status(err.Status).JSON(fiber.Map{
		"error": err.Message,
		"code":  err.Code,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return DomainError(c, apperrors.ErrInvalidRequest.WithMessage(message))
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return DomainError(c, apperrors.ErrUnauthorized)
}

// ValidationError writes a 422 with messages keyed by request field. The
// first message of the first field doubles as the top-level message.
func ValidationError(c *fiber.Ctx, code, field, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": message,
		"code":    code,
		"errors": fiber.Map{
			field: []string{message},
		},
	})
}
