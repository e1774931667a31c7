package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/owner"
)

// Claims carries the authenticated owner identity inside the access token.
type Claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 access tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService builds the token service from application config.
func NewService(cfg config.Config) *Service {
	return &Service{secret: []byte(cfg.JWTSecret), ttl: cfg.AccessTokenTTL}
}

// Issue signs an access token for the owner.
func (s *Service) Issue(o owner.Owner) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Admin: o.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   o.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates a token, returning its claims.
func (s *Service) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fault.Newf(fault.Unauthorized, "unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, fault.Wrap(fault.Unauthorized, "invalid token", err)
	}
	return claims, nil
}
