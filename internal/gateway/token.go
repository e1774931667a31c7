package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brisapay/brisapay/internal/fault"
)

const tokenKeyPrefix = "gateway:token:v1:"

// TokenCache stores provider bearer tokens with a TTL.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

// RedisTokenCache keeps tokens in Redis so every instance shares them.
type RedisTokenCache struct {
	client *redis.Client
}

// NewRedisTokenCache builds a Redis-backed token cache.
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return c.client.Set(ctx, key, token, ttl).Err()
}

type memoryToken struct {
	token     string
	expiresAt time.Time
}

// MemoryTokenCache is a process-local cache for tests and dev mode.
type MemoryTokenCache struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

// NewMemoryTokenCache builds an in-memory token cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{tokens: make(map[string]memoryToken)}
}

func (c *MemoryTokenCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tokens[key]
	if !ok || time.Now().After(t.expiresAt) {
		delete(c.tokens, key)
		return "", false, nil
	}
	return t.token, true, nil
}

func (c *MemoryTokenCache) Set(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = memoryToken{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

// TokenFetcher obtains a fresh bearer token from a provider, returning the
// token and the provider-declared lifetime.
type TokenFetcher func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenSource hands out provider bearer tokens, caching them with a TTL cut
// short by a safety margin so a cached token is never presented near expiry.
// Each provider registers its own fetcher; cache state is keyed per provider.
type TokenSource struct {
	cache  TokenCache
	margin time.Duration

	mu       sync.Mutex
	fetchers map[string]TokenFetcher
}

// NewTokenSource builds a token source over the given cache.
func NewTokenSource(cache TokenCache, margin time.Duration) *TokenSource {
	return &TokenSource{cache: cache, margin: margin, fetchers: make(map[string]TokenFetcher)}
}

// Register installs the fetcher used on cache miss for the named provider.
func (s *TokenSource) Register(provider string, fetch TokenFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchers[provider] = fetch
}

// Token returns a cached token for the provider, fetching a fresh one on miss.
func (s *TokenSource) Token(ctx context.Context, provider string) (string, error) {
	key := tokenKeyPrefix + provider

	token, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	s.mu.Lock()
	fetch, registered := s.fetchers[provider]
	s.mu.Unlock()
	if !registered {
		return "", fault.Newf(fault.Configuration, "no token fetcher registered for provider %s", provider)
	}

	token, expiresIn, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	ttl := expiresIn - s.margin
	if ttl <= 0 {
		ttl = expiresIn / 2
	}
	if ttl > 0 {
		if err := s.cache.Set(ctx, key, token, ttl); err != nil {
			return "", err
		}
	}
	return token, nil
}
