package utils

import "github.com/gofiber/fiber/v3"

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Success sends a success envelope with the given status.
func Success(c fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data, Message: message})
}

// Fail sends a failure envelope with the given status.
func Fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Data: nil, Message: message})
}
