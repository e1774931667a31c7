package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/wallet"
)

// Response is the JSON representation of a wallet.
type Response struct {
	ID        string    `json:"id"`
	Purpose   string    `json:"purpose"`
	Available string    `json:"available"`
	Pending   string    `json:"pending"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(w wallet.Wallet) Response {
	return Response{
		ID:        w.ID,
		Purpose:   string(w.Purpose),
		Available: w.Available.String(),
		Pending:   w.Pending.String(),
		Total:     w.Total().String(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// EntryResponse is the JSON representation of a ledger entry.
type EntryResponse struct {
	ID              string     `json:"id"`
	Amount          string     `json:"amount"`
	Kind            string     `json:"kind"`
	Status          string     `json:"status"`
	MovementID      string     `json:"movement_id"`
	MovementType    string     `json:"movement_type"`
	PreviousBalance string     `json:"previous_balance"`
	NewBalance      string     `json:"new_balance"`
	Reason          string     `json:"reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}

func toEntryResponse(e ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:              e.ID,
		Amount:          e.Amount.String(),
		Kind:            string(e.Kind),
		Status:          string(e.Status),
		MovementID:      e.Movement.ID,
		MovementType:    string(e.Movement.Type),
		PreviousBalance: e.PreviousBalance.String(),
		NewBalance:      e.NewBalance.String(),
		Reason:          e.Reason,
		CreatedAt:       e.CreatedAt,
	}
	if !e.ProcessedAt.IsZero() {
		processedAt := e.ProcessedAt
		resp.ProcessedAt = &processedAt
	}
	return resp
}

// Handler exposes HTTP endpoints for wallets and their ledgers.
type Handler struct {
	service *wallet.Service
	ledger  *ledger.Service
}

// NewHandler constructs a wallet handler.
func NewHandler(service *wallet.Service, ledgerSvc *ledger.Service) *Handler {
	return &Handler{service: service, ledger: ledgerSvc}
}

// List returns all wallets of the authenticated owner.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	wallets, err := h.service.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]Response, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toResponse(w))
	}
	return c.JSON(fiber.Map{"wallets": out})
}

// Get returns one wallet owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	w, err := h.service.GetOwned(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(w))
}

// Entries returns the ledger entries of a wallet owned by the caller.
func (h *Handler) Entries(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	w, err := h.service.GetOwned(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	entries, err := h.ledger.EntriesByWallet(c.UserContext(), w.ID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return c.JSON(fiber.Map{"entries": out})
}

// Recompute re-derives the wallet's balances from its ledger and reports
// whether they match the stored snapshot (admin).
func (h *Handler) Recompute(c *fiber.Ctx) error {
	rec, err := h.ledger.Recompute(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"wallet_id":          rec.WalletID,
		"computed_available": rec.ComputedAvailable.String(),
		"computed_pending":   rec.ComputedPending.String(),
		"snapshot_available": rec.SnapshotAvailable.String(),
		"snapshot_pending":   rec.SnapshotPending.String(),
		"match":              rec.Match,
	})
}
