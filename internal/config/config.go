package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "BrisaPay"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSweepInterval  = 5 * time.Minute
	defaultRetryBase      = 5 * time.Minute
	defaultRetryCap       = 4 * time.Hour
	defaultMaxAttempts    = 10
	defaultGatewayTimeout = 15 * time.Second
	defaultTokenMargin    = 60 * time.Second
	defaultAccessTokenTTL = 15 * time.Minute
)

// ProviderConfig holds the connection settings for one external payment provider.
type ProviderConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	JWTSecret      string
	AccessTokenTTL time.Duration

	// Gateway routing: payment type -> configured provider name.
	PixProvider        string
	BankSlipProvider   string
	CreditCardProvider string
	GatewayTimeout     time.Duration
	TokenTTLMargin     time.Duration
	Providers          map[string]ProviderConfig

	// Notification retry sweep.
	SweepInterval    time.Duration
	RetryBackoffBase time.Duration
	RetryBackoffCap  time.Duration
	RetryMaxAttempts int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ShutdownPeriod:     defaultShutdownDelay,
		IdempotencyTTL:     defaultIdempotencyTTL,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenTTL:     defaultAccessTokenTTL,
		PixProvider:        os.Getenv("GATEWAY_PIX_PROVIDER"),
		BankSlipProvider:   os.Getenv("GATEWAY_BANKSLIP_PROVIDER"),
		CreditCardProvider: os.Getenv("GATEWAY_CREDITCARD_PROVIDER"),
		GatewayTimeout:     defaultGatewayTimeout,
		TokenTTLMargin:     defaultTokenMargin,
		Providers:          map[string]ProviderConfig{},
		SweepInterval:      defaultSweepInterval,
		RetryBackoffBase:   defaultRetryBase,
		RetryBackoffCap:    defaultRetryCap,
		RetryMaxAttempts:   defaultMaxAttempts,
	}

	durations := []struct {
		env    string
		target *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL},
		{"ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL},
		{"GATEWAY_TIMEOUT", &cfg.GatewayTimeout},
		{"GATEWAY_TOKEN_TTL_MARGIN", &cfg.TokenTTLMargin},
		{"NOTIFICATION_SWEEP_INTERVAL", &cfg.SweepInterval},
		{"NOTIFICATION_RETRY_BACKOFF_BASE", &cfg.RetryBackoffBase},
		{"NOTIFICATION_RETRY_BACKOFF_CAP", &cfg.RetryBackoffCap},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.env, err)
			}
			*d.target = parsed
		}
	}

	if v := os.Getenv("NOTIFICATION_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFICATION_RETRY_MAX_ATTEMPTS: %w", err)
		}
		cfg.RetryMaxAttempts = n
	}

	for _, name := range providerNames(cfg) {
		upper := strings.ToUpper(name)
		cfg.Providers[name] = ProviderConfig{
			BaseURL:      os.Getenv("PROVIDER_" + upper + "_BASE_URL"),
			ClientID:     os.Getenv("PROVIDER_" + upper + "_CLIENT_ID"),
			ClientSecret: os.Getenv("PROVIDER_" + upper + "_CLIENT_SECRET"),
		}
	}

	if cfg.DatabaseURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func providerNames(cfg Config) []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range []string{cfg.PixProvider, cfg.BankSlipProvider, cfg.CreditCardProvider} {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
