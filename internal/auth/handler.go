package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/owner"
)

// LoginRequest is the JSON body for token issuance.
type LoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler exposes the login endpoint.
type Handler struct {
	owners *owner.Service
	tokens *Service
}

// NewHandler constructs an auth handler.
func NewHandler(owners *owner.Service, tokens *Service) *Handler {
	return &Handler{owners: owners, tokens: tokens}
}

// Login exchanges owner credentials for a signed token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	o, err := h.owners.Authenticate(c.UserContext(), req.Email, req.Secret)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	token, expiresAt, err := h.tokens.Issue(o)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(LoginResponse{Token: token, ExpiresAt: expiresAt})
}
