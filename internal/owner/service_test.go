package owner

import (
	"context"
	"testing"

	"github.com/brisapay/brisapay/internal/fault"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	o, err := svc.Register(ctx, RegisterInput{
		Name:        "Loja Brisa",
		Email:       "Loja@Example.com",
		Secret:      "super-secret",
		CallbackURL: "https://loja.example.com/hooks",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if o.Email != "loja@example.com" {
		t.Fatalf("email must be normalized, got %q", o.Email)
	}
	if o.SecretHash == "super-secret" {
		t.Fatalf("secret must be hashed")
	}

	authed, err := svc.Authenticate(ctx, "LOJA@example.com", "super-secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != o.ID {
		t.Fatalf("unexpected owner: %+v", authed)
	}

	if _, err := svc.Authenticate(ctx, "loja@example.com", "wrong"); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@example.com", "super-secret"); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@b.com", Secret: "super-secret"},
		{Name: "Loja", Email: "not-an-email", Secret: "super-secret"},
		{Name: "Loja", Email: "a@b.com", Secret: "short"},
		{Name: "Loja", Email: "a@b.com", Secret: "super-secret", CallbackURL: "ftp://nope"},
	}
	for i, input := range cases {
		if _, err := svc.Register(ctx, input); !fault.IsKind(err, fault.Validation) {
			t.Fatalf("case %d: expected validation fault, got %v", i, err)
		}
	}
}

func TestSetCallbackURL(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	o, err := svc.Register(ctx, RegisterInput{Name: "Loja", Email: "a@b.com", Secret: "super-secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.SetCallbackURL(ctx, o.ID, "https://loja.example.com/hooks"); err != nil {
		t.Fatalf("set callback: %v", err)
	}
	updated, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.CallbackURL != "https://loja.example.com/hooks" {
		t.Fatalf("callback url not persisted: %q", updated.CallbackURL)
	}

	if err := svc.SetCallbackURL(ctx, o.ID, "not-a-url"); !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation fault, got %v", err)
	}
}
