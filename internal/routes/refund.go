package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/refund"
)

// RegisterRefundRoutes wires owner-facing refund endpoints. The two-phase
// approve/complete half lives under the admin group.
func RegisterRefundRoutes(r fiber.Router, h *refund.Handler) {
	r.Post("/refunds", h.Create)
	r.Get("/refunds", h.List)
	r.Get("/refunds/:id", h.Get)
}
