package user

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"socialhub/pkg/events"
)

// counterFake mirrors the repository contract: decrement is
// floor-clamped at zero.
type counterFake struct {
	counts map[string]int
}

func newCounterFake() *counterFake {
	return &counterFake{counts: make(map[string]int)}
}

func (f *counterFake) IncrementPostCount(ctx context.Context, userID string) error {
	f.counts[userID]++
	return nil
}

func (f *counterFake) DecrementPostCount(ctx context.Context, userID string) error {
	if f.counts[userID] > 0 {
		f.counts[userID]--
	}
	return nil
}

func created(userID string, postID int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"postId":%d,"userId":%q}`, postID, userID))
}

func deleted(userID string, postID int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"postId":%d,"userId":%q}`, postID, userID))
}

func TestConsumerCountsCreatesAndDeletes(t *testing.T) {
	store := newCounterFake()
	c := NewConsumer(store, zap.NewNop())
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := c.Handle(ctx, created("u1", i), events.PostCreated); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := c.Handle(ctx, deleted("u1", 2), events.PostDeleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.counts["u1"]; got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}
}

// A delete processed before its create must clamp at zero, never go
// negative.
func TestConsumerDeleteBeforeCreateClampsAtZero(t *testing.T) {
	store := newCounterFake()
	c := NewConsumer(store, zap.NewNop())
	ctx := context.Background()

	if err := c.Handle(ctx, deleted("u1", 1), events.PostDeleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.counts["u1"]; got != 0 {
		t.Fatalf("count after early delete must be 0, got %d", got)
	}
	if got := store.counts["u1"]; got < 0 {
		t.Fatalf("count must never be negative, got %d", got)
	}
}

func TestConsumerCountNeverNegativeAcrossInterleavings(t *testing.T) {
	store := newCounterFake()
	c := NewConsumer(store, zap.NewNop())
	ctx := context.Background()

	keys := []string{
		events.PostDeleted,
		events.PostDeleted,
		events.PostCreated,
		events.PostDeleted,
		events.PostCreated,
		events.PostCreated,
	}
	for i, key := range keys {
		if err := c.Handle(ctx, created("u9", int64(i)), key); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
		if store.counts["u9"] < 0 {
			t.Fatalf("count went negative at step %d", i)
		}
	}
}

func TestConsumerSkipsPayloadWithoutUserID(t *testing.T) {
	store := newCounterFake()
	c := NewConsumer(store, zap.NewNop())

	if err := c.Handle(context.Background(), json.RawMessage(`{"postId":1}`), events.PostCreated); err != nil {
		t.Fatalf("missing userId must be a no-op, got %v", err)
	}
	if len(store.counts) != 0 {
		t.Fatalf("no counter should change, got %v", store.counts)
	}
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	store := newCounterFake()
	c := NewConsumer(store, zap.NewNop())

	if err := c.Handle(context.Background(), json.RawMessage(`{"postId":"not-a-number"}`), events.PostCreated); err == nil {
		t.Fatal("expected decode error")
	}
}
