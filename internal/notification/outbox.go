package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brisapay/brisapay/internal/owner"
)

// Enqueuer accepts terminal-state movement events for delivery. Movement
// orchestrators treat enqueue failures as best-effort: a failed enqueue never
// rolls back the financial transition it describes.
type Enqueuer interface {
	Enqueue(ctx context.Context, event Event) error
}

// Outbox persists notifications for the retry sweep to deliver.
type Outbox struct {
	repo   Repository
	owners owner.Repository
	logger *slog.Logger
}

// NewOutbox builds the notification outbox.
func NewOutbox(repo Repository, owners owner.Repository, logger *slog.Logger) *Outbox {
	return &Outbox{repo: repo, owners: owners, logger: logger}
}

// Enqueue snapshots the event payload against the owner's registered
// callback URL. Owners without a callback URL get no notification.
func (o *Outbox) Enqueue(ctx context.Context, event Event) error {
	acct, err := o.owners.Get(ctx, event.OwnerID)
	if err != nil {
		return err
	}
	if acct.CallbackURL == "" {
		o.logger.Info("owner has no callback url, skipping notification",
			"owner_id", event.OwnerID, "source_event_id", event.SourceEventID)
		return nil
	}

	payload := Payload{
		ID:            uuid.NewString(),
		PaymentID:     event.PaymentID,
		OrderID:       event.OrderID,
		TransactionID: event.TransactionID,
		Status:        event.Status,
		Amount:        event.Amount,
	}
	if !event.PaidAt.IsZero() {
		paidAt := event.PaidAt.UTC()
		payload.PaidAt = &paidAt
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return o.repo.Insert(ctx, Notification{
		ID:            payload.ID,
		SourceEventID: event.SourceEventID,
		CallbackURL:   acct.CallbackURL,
		Payload:       body,
		Status:        StatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	})
}
