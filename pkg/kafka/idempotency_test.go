package kafka

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---------------------------------------------------------------------------
// MemoryIdempotencyStore tests
// ---------------------------------------------------------------------------

func TestMemoryIdempotencyStore_AddThenContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-registered-1"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-registered-1")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains() = false after Add, want true")
	}
}

func TestMemoryIdempotencyStore_UnknownID(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	got, err := store.Contains(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains() = true for unknown ID, want false")
	}
}

func TestMemoryIdempotencyStore_EntriesExpire(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-short-lived"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-short-lived")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains() = false immediately after Add, want true")
	}

	time.Sleep(20 * time.Millisecond)

	got, err = store.Contains(ctx, "evt-short-lived")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains() = true after TTL expiry, want false")
	}
}

func TestMemoryIdempotencyStore_Len(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	if store.Len() != 0 {
		t.Errorf("Len() = %d for new store, want 0", store.Len())
	}

	_ = store.Add(ctx, "a")
	_ = store.Add(ctx, "b")
	_ = store.Add(ctx, "c")

	if store.Len() != 3 {
		t.Errorf("Len() = %d after 3 adds, want 3", store.Len())
	}

	// Re-adding an existing ID must not grow the store.
	_ = store.Add(ctx, "b")
	if store.Len() != 3 {
		t.Errorf("Len() = %d after re-adding existing ID, want 3", store.Len())
	}
}

func TestMemoryIdempotencyStore_ConcurrentSameKey(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, "evt-shared")
			_, _ = store.Contains(ctx, "evt-shared")
		}()
	}

	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("Len() = %d after concurrent adds of the same key, want 1", store.Len())
	}

	got, err := store.Contains(ctx, "evt-shared")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains() = false after concurrent adds, want true")
	}
}

// ---------------------------------------------------------------------------
// IdempotentHandler tests
// ---------------------------------------------------------------------------

// dedupEvent builds an Event directly with a fixed ID so the test controls
// deduplication behavior (NewEvent assigns a random UUID).
func dedupEvent(eventID string) *Event {
	return &Event{
		EventID:     eventID,
		EventType:   "user.registered",
		AggregateID: "usr-42",
	}
}

func countingHandler(calls *int32) Handler {
	return func(ctx context.Context, event *Event) error {
		atomic.AddInt32(calls, 1)
		return nil
	}
}

func TestIdempotentHandler_ProcessesFirstDelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls), testLogger())

	if err := handler(context.Background(), dedupEvent("evt-1")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("inner handler called %d times, want 1", atomic.LoadInt32(&calls))
	}
}

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls), testLogger())

	event := dedupEvent("evt-redelivered")
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("first delivery returned error: %v", err)
	}
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("second delivery returned error: %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("inner handler called %d times, want 1 (redelivery should be skipped)", atomic.LoadInt32(&calls))
	}
}

func TestIdempotentHandler_EmptyEventIDAlwaysProcesses(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls), testLogger())

	// Without an event ID there is nothing to deduplicate on.
	event := dedupEvent("")
	for i := 0; i < 3; i++ {
		if err := handler(context.Background(), event); err != nil {
			t.Fatalf("call %d returned error: %v", i+1, err)
		}
	}

	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("inner handler called %d times, want 3", atomic.LoadInt32(&calls))
	}
}

func TestIdempotentHandler_FailedProcessingIsRetryable(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	handlerErr := errors.New("downstream unavailable")
	var calls int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&calls, 1)
		return handlerErr
	}

	handler := IdempotentHandler(store, inner, testLogger())
	event := dedupEvent("evt-failing")

	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error, got: %v", err)
	}

	// A failed delivery must not be recorded as processed.
	exists, err := store.Contains(context.Background(), "evt-failing")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if exists {
		t.Error("event ID was stored despite handler error, want not stored")
	}

	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error on retry, got: %v", err)
	}

	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("inner handler called %d times, want 2 (retry must not be skipped)", atomic.LoadInt32(&calls))
	}
}

func TestIdempotentHandler_StoreFailureFailsOpen(t *testing.T) {
	var calls int32
	handler := IdempotentHandler(&failingIdempotencyStore{}, countingHandler(&calls), testLogger())

	// A broken store must not block processing.
	if err := handler(context.Background(), dedupEvent("evt-store-down")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("inner handler called %d times, want 1 (fail-open)", atomic.LoadInt32(&calls))
	}
}

func TestIdempotentHandler_DistinctEventsBothProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls), testLogger())

	if err := handler(context.Background(), dedupEvent("evt-registered")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if err := handler(context.Background(), dedupEvent("evt-verified")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("inner handler called %d times, want 2", atomic.LoadInt32(&calls))
	}

	for _, id := range []string{"evt-registered", "evt-verified"} {
		exists, err := store.Contains(context.Background(), id)
		if err != nil {
			t.Fatalf("Contains(%q) error: %v", id, err)
		}
		if !exists {
			t.Errorf("Contains(%q) = false, want true", id)
		}
	}
}

type failingIdempotencyStore struct{}

func (f *failingIdempotencyStore) Contains(_ context.Context, _ string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (f *failingIdempotencyStore) Add(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}
