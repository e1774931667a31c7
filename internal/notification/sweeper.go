package notification

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Sweeper delivers pending notifications on a single recurring loop. Sweeps
// never overlap: the next run is scheduled relative to the completion of the
// previous one. Deliveries within a sweep run sequentially; one failure never
// aborts the sweep for the rest.
type Sweeper struct {
	repo        Repository
	client      *http.Client
	logger      *slog.Logger
	interval    time.Duration
	backoffBase time.Duration
	backoffCap  time.Duration
	maxAttempts int
}

// SweeperConfig bundles the retry policy.
type SweeperConfig struct {
	Interval    time.Duration
	BackoffBase time.Duration
	BackoffCap  time.Duration
	MaxAttempts int
	HTTPTimeout time.Duration
}

// NewSweeper builds the retry sweeper.
func NewSweeper(repo Repository, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sweeper{
		repo:        repo,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		interval:    cfg.Interval,
		backoffBase: cfg.BackoffBase,
		backoffCap:  cfg.BackoffCap,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run executes sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("notification sweeper stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// Sweep loads every due pending notification and attempts delivery once each.
func (s *Sweeper) Sweep(ctx context.Context) {
	due, err := s.repo.ListDue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("load due notifications", "error", err)
		return
	}
	for _, n := range due {
		if ctx.Err() != nil {
			return
		}
		s.attempt(ctx, n)
	}
}

func (s *Sweeper) attempt(ctx context.Context, n Notification) {
	delivered := s.post(ctx, n)

	now := time.Now().UTC()
	n.AttemptCount++
	n.LastAttemptAt = now

	switch {
	case delivered:
		n.Status = StatusDelivered
	case n.AttemptCount >= s.maxAttempts:
		n.Status = StatusAbandoned
		s.logger.Warn("notification abandoned after max attempts",
			"notification_id", n.ID, "attempts", n.AttemptCount, "callback_url", n.CallbackURL)
	default:
		n.NextAttemptAt = now.Add(s.backoff(n.AttemptCount))
	}

	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error("persist notification attempt", "notification_id", n.ID, "error", err)
	}
}

// post sends the payload snapshot; any 2xx response counts as delivered.
func (s *Sweeper) post(ctx context.Context, n Notification) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.CallbackURL, bytes.NewReader(n.Payload))
	if err != nil {
		s.logger.Warn("build notification request", "notification_id", n.ID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("notification delivery failed", "notification_id", n.ID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return true
	}
	s.logger.Warn("notification rejected by callback",
		"notification_id", n.ID, "status", resp.StatusCode)
	return false
}

// backoff doubles the base delay per attempt, capped.
func (s *Sweeper) backoff(attempts int) time.Duration {
	delay := s.backoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= s.backoffCap {
			return s.backoffCap
		}
	}
	if delay > s.backoffCap {
		delay = s.backoffCap
	}
	return delay
}
