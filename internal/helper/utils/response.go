package utils

import "github.com/gofiber/fiber/v2"

type errorEnvelope struct {
	Error string `json:"error"`
}

type dataEnvelope struct {
	Data interface{} `json:"data"`
}

// ResponseError writes the error envelope with the given status.
func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(errorEnvelope{Error: msg})
}

// ResponseSuccess wraps the payload in the standard data envelope.
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(dataEnvelope{Data: data})
}
