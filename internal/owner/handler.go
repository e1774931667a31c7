package owner

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
)

// RegisterRequest is the JSON body for owner registration.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Secret      string `json:"secret"`
	CallbackURL string `json:"callback_url"`
}

// CallbackRequest carries a new notification callback URL.
type CallbackRequest struct {
	CallbackURL string `json:"callback_url"`
}

// Response is the JSON representation of an owner, secret hash excluded.
type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CallbackURL string    `json:"callback_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(o Owner) Response {
	return Response{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		CallbackURL: o.CallbackURL,
		CreatedAt:   o.CreatedAt,
	}
}

// Handler exposes HTTP endpoints for owner accounts.
type Handler struct {
	service *Service
}

// NewHandler constructs an owner handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register provisions a new owner account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	o, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Secret:      req.Secret,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(o))
}

// Me returns the authenticated owner's account.
func (h *Handler) Me(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	o, err := h.service.Get(c.UserContext(), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(toResponse(o))
}

// SetCallbackURL updates where movement notifications are delivered.
func (h *Handler) SetCallbackURL(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("owner_id").(string)
	var req CallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SetCallbackURL(c.UserContext(), ownerID, req.CallbackURL); err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
