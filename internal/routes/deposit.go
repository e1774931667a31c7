package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/deposit"
)

// RegisterDepositRoutes wires deposit endpoints. Provider confirmations
// arrive on the public webhook route, not here.
func RegisterDepositRoutes(r fiber.Router, h *deposit.Handler) {
	r.Post("/deposits", h.Create)
	r.Get("/deposits", h.List)
	r.Get("/deposits/:id", h.Get)
}
