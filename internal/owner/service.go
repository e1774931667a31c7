package owner

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brisapay/brisapay/internal/fault"
)

// Service manages owner registration and credential checks.
type Service struct {
	repo Repository
}

// NewService builds an owner service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to register an owner.
type RegisterInput struct {
	Name        string
	Email       string
	Secret      string
	CallbackURL string
}

// Register provisions an owner account with a bcrypt-hashed secret.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Owner, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Owner{}, fault.New(fault.Validation, "name is required")
	}
	if !strings.Contains(input.Email, "@") {
		return Owner{}, fault.New(fault.Validation, "valid email is required")
	}
	if len(input.Secret) < 8 {
		return Owner{}, fault.New(fault.Validation, "secret must be at least 8 characters")
	}
	if input.CallbackURL != "" {
		if err := validateCallbackURL(input.CallbackURL); err != nil {
			return Owner{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Owner{}, err
	}

	o := Owner{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Email:       strings.ToLower(input.Email),
		CallbackURL: input.CallbackURL,
		SecretHash:  string(hash),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

// Authenticate checks email and secret, returning the owner on success.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (Owner, error) {
	o, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if fault.IsKind(err, fault.NotFound) {
			return Owner{}, fault.New(fault.Unauthorized, "invalid credentials")
		}
		return Owner{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(o.SecretHash), []byte(secret)) != nil {
		return Owner{}, fault.New(fault.Unauthorized, "invalid credentials")
	}
	return o, nil
}

// Get fetches an owner by identifier.
func (s *Service) Get(ctx context.Context, id string) (Owner, error) {
	return s.repo.Get(ctx, id)
}

// SetCallbackURL updates the owner's notification callback URL.
func (s *Service) SetCallbackURL(ctx context.Context, id, callbackURL string) error {
	if err := validateCallbackURL(callbackURL); err != nil {
		return err
	}
	return s.repo.UpdateCallbackURL(ctx, id, callbackURL)
}

func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fault.Newf(fault.Validation, "callback url %q is not a valid http(s) url", raw)
	}
	return nil
}
