package middleware

import (
	"log"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

// EscalationMiddleware promotes stale shipments before each request is
// handled, so reads always see up-to-date statuses.
func EscalationMiddleware(svc services.EscalationService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if _, err := svc.Sweep(time.Now()); err != nil {
			log.Printf("Warning: escalation sweep failed: %v", err)
		}
		return ctx.Next()
	}
}
