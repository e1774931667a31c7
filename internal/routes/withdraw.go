package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/withdraw"
)

// RegisterWithdrawalRoutes wires owner-facing withdrawal endpoints. The
// process/reject half lives under the admin group.
func RegisterWithdrawalRoutes(r fiber.Router, h *withdraw.Handler) {
	r.Post("/withdrawals", h.Create)
	r.Get("/withdrawals", h.List)
	r.Get("/withdrawals/:id", h.Get)
}
