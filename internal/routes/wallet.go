package routes

import (
	"github.com/gofiber/fiber/v2"

	wallethandler "github.com/brisapay/brisapay/internal/wallet/handler"
)

// RegisterWalletRoutes wires wallet and ledger read endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallethandler.Handler) {
	r.Get("/wallets", h.List)
	r.Get("/wallets/:id", h.Get)
	r.Get("/wallets/:id/entries", h.Entries)
}
