package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type storeFake struct {
	pending []*Event
	sent    []int64
	failed  []int64
}

func (s *storeFake) PendingEvents(ctx context.Context, limit int) ([]*Event, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *storeFake) MarkSent(ctx context.Context, eventID int64) error {
	s.sent = append(s.sent, eventID)
	return nil
}

func (s *storeFake) MarkFailed(ctx context.Context, eventID int64, maxRetries int) error {
	s.failed = append(s.failed, eventID)
	return nil
}

type pubFake struct {
	published []string
	failKeys  map[string]bool
}

func (p *pubFake) Publish(exchange, routingKey string, payload any) error {
	if p.failKeys[routingKey] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, exchange+"/"+routingKey)
	return nil
}

func TestDispatchMarksSent(t *testing.T) {
	store := &storeFake{pending: []*Event{
		{ID: 1, Exchange: "post_exchange", RoutingKey: "post.created", Payload: json.RawMessage(`{"postId":1}`)},
		{ID: 2, Exchange: "post_exchange", RoutingKey: "post.deleted", Payload: json.RawMessage(`{"postId":1}`)},
	}}
	pub := &pubFake{}

	d := NewDispatcher(store, pub, zap.NewNop())
	d.Dispatch(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 publishes, got %v", pub.published)
	}
	if len(store.sent) != 2 || store.sent[0] != 1 || store.sent[1] != 2 {
		t.Fatalf("expected events 1,2 marked sent, got %v", store.sent)
	}
	if len(store.failed) != 0 {
		t.Fatalf("no events should be failed, got %v", store.failed)
	}
}

func TestDispatchMarksFailedAndContinues(t *testing.T) {
	store := &storeFake{pending: []*Event{
		{ID: 1, Exchange: "post_exchange", RoutingKey: "post.created", Payload: json.RawMessage(`{}`)},
		{ID: 2, Exchange: "post_exchange", RoutingKey: "post.deleted", Payload: json.RawMessage(`{}`)},
	}}
	pub := &pubFake{failKeys: map[string]bool{"post.created": true}}

	d := NewDispatcher(store, pub, zap.NewNop())
	d.Dispatch(context.Background())

	if len(store.failed) != 1 || store.failed[0] != 1 {
		t.Fatalf("expected event 1 marked failed, got %v", store.failed)
	}
	if len(store.sent) != 1 || store.sent[0] != 2 {
		t.Fatalf("a failed event must not block the rest of the batch, sent=%v", store.sent)
	}
}

func TestDispatchRespectsBatchSize(t *testing.T) {
	store := &storeFake{}
	for i := int64(1); i <= 10; i++ {
		store.pending = append(store.pending, &Event{ID: i, Exchange: "post_exchange", RoutingKey: "post.created", Payload: json.RawMessage(`{}`)})
	}
	pub := &pubFake{}

	d := NewDispatcher(store, pub, zap.NewNop()).WithBatchSize(3)
	d.Dispatch(context.Background())

	if len(store.sent) != 3 {
		t.Fatalf("expected 3 events in the batch, got %d", len(store.sent))
	}
}
