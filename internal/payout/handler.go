package payout

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
)

// CreateRequest is the JSON body for payout creation.
type CreateRequest struct {
	Amount            string `json:"amount"`
	PayeeKey          string `json:"payee_key"`
	Description       string `json:"description"`
	ExternalReference string `json:"external_reference"`
}

// RejectRequest carries the admin rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Response is the JSON representation of a payout.
type Response struct {
	ID                string     `json:"id"`
	WalletID          string     `json:"wallet_id"`
	Amount            string     `json:"amount"`
	PayeeKey          string     `json:"payee_key"`
	Description       string     `json:"description,omitempty"`
	ExternalReference string     `json:"external_reference,omitempty"`
	Status            string     `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	RequestedAt       time.Time  `json:"requested_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

func toResponse(p Payout) Response {
	resp := Response{
		ID:                p.ID,
		WalletID:          p.WalletID,
		Amount:            p.Amount.String(),
		PayeeKey:          p.PayeeKey,
		Description:       p.Description,
		ExternalReference: p.ExternalReference,
		Status:            string(p.Status),
		RejectionReason:   p.RejectionReason,
		RequestedAt:       p.RequestedAt,
	}
	if !p.ProcessedAt.IsZero() {
		processedAt := p.ProcessedAt
		resp.ProcessedAt = &processedAt
	}
	return resp
}

// Handler exposes HTTP endpoints for payouts.
type Handler struct {
	service *Service
}

// NewHandler constructs a payout handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create initiates a payout for the authenticated owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}

	p, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:           ownerID,
		Amount:            amount,
		PayeeKey:          req.PayeeKey,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(p))
}

// Get returns one payout owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	p, err := h.service.Get(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(p))
}

// List pages through the caller's payouts.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	payouts, err := h.service.List(c.UserContext(), ownerID, movement.Page{Limit: limit, Offset: offset})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]Response, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toResponse(p))
	}
	return c.JSON(fiber.Map{"payouts": out})
}

// Process settles a pending payout (admin).
func (h *Handler) Process(c *fiber.Ctx) error {
	p, err := h.service.Process(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(p))
}

// Reject cancels a pending payout (admin).
func (h *Handler) Reject(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.service.Reject(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(p))
}
