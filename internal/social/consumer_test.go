package social

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"socialhub/pkg/events"
)

type purgerFake struct {
	interactions map[int64]int64
	calls        []int64
}

func (f *purgerFake) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	f.calls = append(f.calls, postID)
	n := f.interactions[postID]
	delete(f.interactions, postID)
	return n, nil
}

func TestConsumerCascadesPostDeletion(t *testing.T) {
	store := &purgerFake{interactions: map[int64]int64{42: 5}}
	c := NewConsumer(store, zap.NewNop())

	err := c.Handle(context.Background(), json.RawMessage(`{"postId":42,"userId":"u1"}`), events.PostDeleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.calls) != 1 || store.calls[0] != 42 {
		t.Fatalf("expected cascade for post 42, got %v", store.calls)
	}
	if _, ok := store.interactions[42]; ok {
		t.Fatal("interactions for post 42 must be gone")
	}
}

// Deleting interactions for an already-cleaned post is a silent no-op:
// cross-queue ordering is not guaranteed and races are expected.
func TestConsumerMissingPostIsNoOp(t *testing.T) {
	store := &purgerFake{interactions: map[int64]int64{}}
	c := NewConsumer(store, zap.NewNop())

	err := c.Handle(context.Background(), json.RawMessage(`{"postId":42}`), events.PostDeleted)
	if err != nil {
		t.Fatalf("missing post must not be an error, got %v", err)
	}
}

func TestConsumerIgnoresPayloadWithoutPostID(t *testing.T) {
	store := &purgerFake{interactions: map[int64]int64{1: 1}}
	c := NewConsumer(store, zap.NewNop())

	if err := c.Handle(context.Background(), json.RawMessage(`{}`), events.PostDeleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("no cascade expected, got %v", store.calls)
	}
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	c := NewConsumer(&purgerFake{}, zap.NewNop())

	if err := c.Handle(context.Background(), json.RawMessage(`{"postId":"seven"}`), events.PostDeleted); err == nil {
		t.Fatal("expected decode error")
	}
}
