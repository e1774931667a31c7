package gateway

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/brisapay/brisapay/internal/fault"
)

func TestTokenSourceCachesPerProvider(t *testing.T) {
	tokens := NewTokenSource(NewMemoryTokenCache(), time.Minute)

	fetches := 0
	tokens.Register("altapag", func(context.Context) (string, time.Duration, error) {
		fetches++
		return "alta-token", time.Hour, nil
	})
	tokens.Register("vexocard", func(context.Context) (string, time.Duration, error) {
		return "vexo-token", time.Hour, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		token, err := tokens.Token(ctx, "altapag")
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if token != "alta-token" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if fetches != 1 {
		t.Fatalf("expected a single fetch, got %d", fetches)
	}

	other, err := tokens.Token(ctx, "vexocard")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if other != "vexo-token" {
		t.Fatalf("providers must not share cache slots, got %q", other)
	}
}

func TestTokenSourceUnregisteredProvider(t *testing.T) {
	tokens := NewTokenSource(NewMemoryTokenCache(), 0)
	_, err := tokens.Token(context.Background(), "ghost")
	if !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
}

func TestTokenSourceRedisTTLMargin(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tokens := NewTokenSource(NewRedisTokenCache(client), 5*time.Minute)
	tokens.Register("altapag", func(context.Context) (string, time.Duration, error) {
		return "alta-token", time.Hour, nil
	})

	ctx := context.Background()
	if _, err := tokens.Token(ctx, "altapag"); err != nil {
		t.Fatalf("token: %v", err)
	}

	ttl := mr.TTL(tokenKeyPrefix + "altapag")
	if ttl != 55*time.Minute {
		t.Fatalf("expected ttl cut by the margin, got %s", ttl)
	}

	// A fresh source over the same Redis sees the shared token without
	// fetching.
	shared := NewTokenSource(NewRedisTokenCache(client), 5*time.Minute)
	token, err := shared.Token(ctx, "altapag")
	if err != nil {
		t.Fatalf("shared token: %v", err)
	}
	if token != "alta-token" {
		t.Fatalf("expected shared cached token, got %q", token)
	}
}

func TestTokenSourceShortLivedTokenFallback(t *testing.T) {
	cache := NewMemoryTokenCache()
	tokens := NewTokenSource(cache, 10*time.Minute)
	tokens.Register("altapag", func(context.Context) (string, time.Duration, error) {
		return "alta-token", time.Minute, nil
	})

	ctx := context.Background()
	if _, err := tokens.Token(ctx, "altapag"); err != nil {
		t.Fatalf("token: %v", err)
	}
	// expiresIn below the margin falls back to half-life caching.
	if _, ok, _ := cache.Get(ctx, tokenKeyPrefix+"altapag"); !ok {
		t.Fatalf("expected short-lived token to be cached with fallback ttl")
	}
}
