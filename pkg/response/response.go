package response

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the wire shape every endpoint answers with. Clients key off
// Code, not the HTTP status: 200 success, 500 business failure, 0 rejected
// credential.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeOK           = 200
	CodeError        = 500
	CodeUnauthorized = 0
)

// Success writes the success envelope with an optional payload.
func Success(c *fiber.Ctx, data any) error {
	return c.Status(http.StatusOK).JSON(Envelope{Code: CodeOK, Message: "ok", Data: data})
}

// Error writes a business failure. The HTTP status stays 200; the envelope
// code carries the failure.
func Error(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusOK).JSON(Envelope{Code: CodeError, Message: message, Data: nil})
}

// Unauthorized writes the credential-rejection envelope with HTTP 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(Envelope{Code: CodeUnauthorized, Message: message, Data: nil})
}
