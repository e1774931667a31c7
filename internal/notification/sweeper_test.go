package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/logging"
	"github.com/brisapay/brisapay/internal/owner"
)

func testSweeper(repo Repository, maxAttempts int) *Sweeper {
	return NewSweeper(repo, SweeperConfig{
		Interval:    time.Minute,
		BackoffBase: time.Minute,
		BackoffCap:  8 * time.Minute,
		MaxAttempts: maxAttempts,
		HTTPTimeout: time.Second,
	}, logging.Discard())
}

func insertPending(t *testing.T, repo Repository, callbackURL string) Notification {
	t.Helper()
	body, _ := json.Marshal(Payload{
		ID:        uuid.NewString(),
		PaymentID: uuid.NewString(),
		Status:    "completed",
		Amount:    decimal.RequireFromString("10.00"),
	})
	n := Notification{
		ID:            uuid.NewString(),
		SourceEventID: uuid.NewString(),
		CallbackURL:   callbackURL,
		Payload:       body,
		Status:        StatusPending,
		NextAttemptAt: time.Now().UTC().Add(-time.Second),
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.Insert(context.Background(), n); err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	return n
}

func TestSweepDeliversPayloadSnapshot(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewMemoryRepository()
	n := insertPending(t, repo, srv.URL)

	testSweeper(repo, 5).Sweep(context.Background())

	stored, err := repo.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if stored.Status != StatusDelivered {
		t.Fatalf("expected delivered, got %s", stored.Status)
	}
	if stored.AttemptCount != 1 {
		t.Fatalf("expected one attempt, got %d", stored.AttemptCount)
	}
	if got.Status != "completed" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSweepRetriesUntilCallbackRecovers(t *testing.T) {
	var failures int32 = 2
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&failures, -1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repo := NewMemoryRepository()
	n := insertPending(t, repo, srv.URL)
	sweeper := testSweeper(repo, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sweeper.Sweep(ctx)
		// Advance the schedule so the next sweep sees the notification.
		stored, _ := repo.Get(ctx, n.ID)
		if stored.Status == StatusPending {
			stored.NextAttemptAt = time.Now().UTC().Add(-time.Second)
			if err := repo.Update(ctx, stored); err != nil {
				t.Fatalf("reschedule: %v", err)
			}
		}
	}

	stored, _ := repo.Get(ctx, n.ID)
	if stored.Status != StatusDelivered {
		t.Fatalf("expected delivery after retries, got %s", stored.Status)
	}
	if stored.AttemptCount != 3 {
		t.Fatalf("expected three attempts, got %d", stored.AttemptCount)
	}
}

func TestSweepAbandonsAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	repo := NewMemoryRepository()
	n := insertPending(t, repo, srv.URL)
	sweeper := testSweeper(repo, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sweeper.Sweep(ctx)
		stored, _ := repo.Get(ctx, n.ID)
		if stored.Status == StatusPending {
			stored.NextAttemptAt = time.Now().UTC().Add(-time.Second)
			_ = repo.Update(ctx, stored)
		}
	}

	stored, _ := repo.Get(ctx, n.ID)
	if stored.Status != StatusAbandoned {
		t.Fatalf("expected abandoned, got %s", stored.Status)
	}
	if stored.AttemptCount != 2 {
		t.Fatalf("abandoned notifications must stop retrying, got %d attempts", stored.AttemptCount)
	}
}

func TestSweepFailureIsolation(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer good.Close()

	repo := NewMemoryRepository()
	// Unreachable callback fails fast; the healthy one must still deliver.
	broken := insertPending(t, repo, "http://127.0.0.1:1/callback")
	healthy := insertPending(t, repo, good.URL)

	testSweeper(repo, 5).Sweep(context.Background())

	b, _ := repo.Get(context.Background(), broken.ID)
	h, _ := repo.Get(context.Background(), healthy.ID)
	if b.Status != StatusPending || b.AttemptCount != 1 {
		t.Fatalf("broken callback should stay pending with one attempt, got %+v", b)
	}
	if h.Status != StatusDelivered {
		t.Fatalf("healthy callback should deliver despite the broken one, got %s", h.Status)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	s := testSweeper(NewMemoryRepository(), 10)

	want := []time.Duration{
		time.Minute,
		2 * time.Minute,
		4 * time.Minute,
		8 * time.Minute,
		8 * time.Minute,
	}
	for i, expect := range want {
		if got := s.backoff(i + 1); got != expect {
			t.Fatalf("attempt %d: expected %s, got %s", i+1, expect, got)
		}
	}
}

func TestOutboxSkipsOwnersWithoutCallback(t *testing.T) {
	owners := owner.NewMemoryRepository()
	quiet := owner.Owner{ID: uuid.NewString(), Name: "Quiet", Email: "quiet@example.com", SecretHash: "x"}
	if err := owners.Create(context.Background(), quiet); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	repo := NewMemoryRepository()
	outbox := NewOutbox(repo, owners, logging.Discard())

	err := outbox.Enqueue(context.Background(), Event{
		SourceEventID: uuid.NewString(),
		OwnerID:       quiet.ID,
		Status:        "completed",
		Amount:        decimal.RequireFromString("5.00"),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	due, _ := repo.ListDue(context.Background(), time.Now().UTC().Add(time.Hour))
	if len(due) != 0 {
		t.Fatalf("no notification expected for owner without callback, got %d", len(due))
	}
}

func TestOutboxSnapshotsPayload(t *testing.T) {
	owners := owner.NewMemoryRepository()
	acct := owner.Owner{
		ID: uuid.NewString(), Name: "Loja", Email: "loja@example.com",
		CallbackURL: "https://loja.example.com/hooks", SecretHash: "x",
	}
	if err := owners.Create(context.Background(), acct); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	repo := NewMemoryRepository()
	outbox := NewOutbox(repo, owners, logging.Discard())

	paidAt := time.Now().UTC().Truncate(time.Second)
	err := outbox.Enqueue(context.Background(), Event{
		SourceEventID: uuid.NewString(),
		OwnerID:       acct.ID,
		PaymentID:     "pay-1",
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Status:        "completed",
		Amount:        decimal.RequireFromString("99.90"),
		PaidAt:        paidAt,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	due, _ := repo.ListDue(context.Background(), time.Now().UTC().Add(time.Second))
	if len(due) != 1 {
		t.Fatalf("expected one due notification, got %d", len(due))
	}
	var payload Payload
	if err := json.Unmarshal(due[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.PaymentID != "pay-1" || payload.OrderID != "order-1" || payload.TransactionID != "tx-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.PaidAt == nil || !payload.PaidAt.Equal(paidAt) {
		t.Fatalf("expected paidAt snapshot, got %+v", payload.PaidAt)
	}
}
