package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/payout"
)

// RegisterPayoutRoutes wires owner-facing payout endpoints. The
// process/reject half lives under the admin group.
func RegisterPayoutRoutes(r fiber.Router, h *payout.Handler) {
	r.Post("/payouts", h.Create)
	r.Get("/payouts", h.List)
	r.Get("/payouts/:id", h.Get)
}
