package middleware

import (
	"strings"

	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		ctx.Locals("username", user.Username)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals("user").(dto.AuthResponse)
		if !ok || user.Username == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !user.IsAdmin {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin only",
			})
		}

		return ctx.Next()
	}
}

func StoreOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals("user").(dto.AuthResponse)
		if !ok || user.Username == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !user.IsStore && !user.IsAdmin {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "store only",
			})
		}

		return ctx.Next()
	}
}
