package deposit

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/gateway"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
)

// Handler exposes HTTP endpoints for deposits.
type Handler struct {
	service *Service
}

// NewHandler constructs a deposit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create initiates a deposit for the authenticated owner.
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

	d, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:           ownerID,
		Amount:            amount,
		PaymentType:       gateway.PaymentType(req.PaymentType),
		WalletID:          req.WalletID,
		ExternalReference: req.ExternalReference,
		Payer:             req.Payer,
		Card:              req.Card,
		Customer:          req.Customer,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(d))
}

// Confirm receives the provider confirmation webhook.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req ConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}

	d, err := h.service.Confirm(c.UserContext(), Confirmation{
		TransactionID: req.TransactionID,
		Status:        req.Status,
		Amount:        amount,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(d))
}

// Get returns one deposit owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	d, err := h.service.Get(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(d))
}

// List pages through the caller's deposits.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	page := pageFromQuery(c)
	deposits, err := h.service.List(c.UserContext(), ownerID, page)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{"deposits": toResponses(deposits), "limit": page.Normalize().Limit, "offset": page.Normalize().Offset})
}

func pageFromQuery(c *fiber.Ctx) movement.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return movement.Page{Limit: limit, Offset: offset}
}
