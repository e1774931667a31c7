package refund

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
)

// CreateRequest is the JSON body for refund creation.
type CreateRequest struct {
	Amount                string `json:"amount"`
	OriginalTransactionID string `json:"original_transaction_id"`
}

// CompleteRequest carries the provider receipt for a processed refund.
type CompleteRequest struct {
	Receipt string `json:"receipt"`
}

// RejectRequest carries the admin rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Response is the JSON representation of a refund.
type Response struct {
	ID                    string     `json:"id"`
	WalletID              string     `json:"wallet_id"`
	Amount                string     `json:"amount"`
	OriginalTransactionID string     `json:"original_transaction_id"`
	OriginalAmount        string     `json:"original_amount"`
	Receipt               string     `json:"receipt,omitempty"`
	Status                string     `json:"status"`
	RejectionReason       string     `json:"rejection_reason,omitempty"`
	RequestedAt           time.Time  `json:"requested_at"`
	ProcessedAt           *time.Time `json:"processed_at,omitempty"`
}

func toResponse(rf Refund) Response {
	resp := Response{
		ID:                    rf.ID,
		WalletID:              rf.WalletID,
		Amount:                rf.Amount.String(),
		OriginalTransactionID: rf.OriginalTransactionID,
		OriginalAmount:        rf.OriginalAmount.String(),
		Receipt:               rf.Receipt,
		Status:                string(rf.Status),
		RejectionReason:       rf.RejectionReason,
		RequestedAt:           rf.RequestedAt,
	}
	if !rf.ProcessedAt.IsZero() {
		processedAt := rf.ProcessedAt
		resp.ProcessedAt = &processedAt
	}
	return resp
}

// Handler exposes HTTP endpoints for refunds.
type Handler struct {
	service *Service
}

// NewHandler constructs a refund handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create initiates a refund for the authenticated owner.
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

	rf, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:               ownerID,
		Amount:                amount,
		OriginalTransactionID: req.OriginalTransactionID,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(rf))
}

// Get returns one refund owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	rf, err := h.service.Get(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(rf))
}

// List pages through the caller's refunds.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	refunds, err := h.service.List(c.UserContext(), ownerID, movement.Page{Limit: limit, Offset: offset})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]Response, 0, len(refunds))
	for _, rf := range refunds {
		out = append(out, toResponse(rf))
	}
	return c.JSON(fiber.Map{"refunds": out})
}

// Approve moves a pending refund into processing (admin).
func (h *Handler) Approve(c *fiber.Ctx) error {
	rf, err := h.service.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(rf))
}

// Complete settles a processing refund with the provider receipt (admin).
func (h *Handler) Complete(c *fiber.Ctx) error {
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rf, err := h.service.Complete(c.UserContext(), c.Params("id"), req.Receipt)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(rf))
}

// Reject fails a refund and restores the reservation (admin).
func (h *Handler) Reject(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rf, err := h.service.Reject(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(rf))
}
