package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/owner"
)

func testConfig(secret string) config.Config {
	return config.Config{JWTSecret: secret, AccessTokenTTL: 15 * time.Minute}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService(testConfig("test-secret"))
	o := owner.Owner{ID: uuid.NewString(), Admin: true}

	token, expiresAt, err := svc.Issue(o)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry must be in the future, got %s", expiresAt)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != o.ID {
		t.Fatalf("expected subject %s, got %s", o.ID, claims.Subject)
	}
	if !claims.Admin {
		t.Fatalf("admin claim lost")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewService(testConfig("secret-a")).Issue(owner.Owner{ID: uuid.NewString()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewService(testConfig("secret-b")).Verify(token); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := NewService(testConfig("secret")).Verify("not.a.token"); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(config.Config{JWTSecret: "secret", AccessTokenTTL: -time.Minute})
	token, _, err := svc.Issue(owner.Owner{ID: uuid.NewString()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}
