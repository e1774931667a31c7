package withdraw

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
)

// CreateRequest is the JSON body for withdrawal creation.
type CreateRequest struct {
	Amount            string `json:"amount"`
	PayeeKey          string `json:"payee_key"`
	ExternalReference string `json:"external_reference"`
}

// RejectRequest carries the admin rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Response is the JSON representation of a withdrawal.
type Response struct {
	ID                string     `json:"id"`
	WalletID          string     `json:"wallet_id"`
	Amount            string     `json:"amount"`
	PayeeKey          string     `json:"payee_key"`
	ExternalReference string     `json:"external_reference"`
	Status            string     `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	RequestedAt       time.Time  `json:"requested_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

func toResponse(w Withdrawal) Response {
	resp := Response{
		ID:                w.ID,
		WalletID:          w.WalletID,
		Amount:            w.Amount.String(),
		PayeeKey:          w.PayeeKey,
		ExternalReference: w.ExternalReference,
		Status:            string(w.Status),
		RejectionReason:   w.RejectionReason,
		RequestedAt:       w.RequestedAt,
	}
	if !w.ProcessedAt.IsZero() {
		processedAt := w.ProcessedAt
		resp.ProcessedAt = &processedAt
	}
	return resp
}

// Handler exposes HTTP endpoints for withdrawals.
type Handler struct {
	service *Service
}

// NewHandler constructs a withdrawal handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create initiates a withdrawal for the authenticated owner.
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

	w, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:           ownerID,
		Amount:            amount,
		PayeeKey:          req.PayeeKey,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w))
}

// Get returns one withdrawal owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	w, err := h.service.Get(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(w))
}

// List pages through the caller's withdrawals.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	withdrawals, err := h.service.List(c.UserContext(), ownerID, movement.Page{Limit: limit, Offset: offset})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]Response, 0, len(withdrawals))
	for _, w := range withdrawals {
		out = append(out, toResponse(w))
	}
	return c.JSON(fiber.Map{"withdrawals": out})
}

// Process settles a pending withdrawal (admin).
func (h *Handler) Process(c *fiber.Ctx) error {
	w, err := h.service.Process(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(w))
}

// Reject fails a pending withdrawal (admin).
func (h *Handler) Reject(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Reject(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(w))
}
