package notification

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type connFake struct {
	sent   []Message
	failAt int
	closed bool
}

func (c *connFake) Send(msg Message) error {
	if c.failAt > 0 && len(c.sent)+1 >= c.failAt {
		return errors.New("connection gone")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *connFake) Close() error {
	c.closed = true
	return nil
}

func newTestRouter() (*Router, *Registry, *MemoryPending) {
	reg := NewRegistry()
	pending := NewMemoryPending()
	return NewRouter(reg, pending, zap.NewNop()), reg, pending
}

func TestSendToOfflineUserQueues(t *testing.T) {
	router, _, pending := newTestRouter()
	ctx := context.Background()

	msg := Message{Type: TypeLike, TargetUserID: "u7", Body: "alice liked your post"}
	if err := router.SendToUser(ctx, msg); err != nil {
		t.Fatalf("SendToUser: %v", err)
	}

	queued, err := pending.Drain(ctx, "u7")
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(queued) != 1 || queued[0].Body != "alice liked your post" {
		t.Fatalf("expected one queued message, got %v", queued)
	}
}

func TestConnectFlushesPendingInOrder(t *testing.T) {
	router, _, _ := newTestRouter()
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		router.SendToUser(ctx, Message{Type: TypeLike, TargetUserID: "u7", Body: body})
	}

	conn := &connFake{}
	router.Connected(ctx, "u7", conn)

	if len(conn.sent) != 3 {
		t.Fatalf("expected 3 flushed messages, got %d", len(conn.sent))
	}
	for i, want := range []string{"first", "second", "third"} {
		if conn.sent[i].Body != want {
			t.Errorf("position %d: got %q, want %q", i, conn.sent[i].Body, want)
		}
	}
}

func TestSecondConnectionDoesNotReplayFlushed(t *testing.T) {
	router, _, _ := newTestRouter()
	ctx := context.Background()

	router.SendToUser(ctx, Message{Type: TypeComment, TargetUserID: "u7", Body: "hello"})

	first := &connFake{}
	router.Connected(ctx, "u7", first)
	if len(first.sent) != 1 {
		t.Fatalf("expected first connection to receive the pending message")
	}

	second := &connFake{}
	router.Connected(ctx, "u7", second)
	if len(second.sent) != 1 || second.sent[0].Type != TypeSystem {
		t.Fatalf("expected only the system greeting on second connection, got %v", second.sent)
	}
}

func TestConnectWithEmptyQueueGetsGreeting(t *testing.T) {
	router, _, _ := newTestRouter()
	conn := &connFake{}

	router.Connected(context.Background(), "u1", conn)

	if len(conn.sent) != 1 {
		t.Fatalf("expected exactly one frame, got %d", len(conn.sent))
	}
	if conn.sent[0].Type != TypeSystem || conn.sent[0].Body != "Connected to notification service" {
		t.Fatalf("unexpected greeting: %v", conn.sent[0])
	}
}

func TestLiveDeliveryReachesAllConnections(t *testing.T) {
	router, _, _ := newTestRouter()
	ctx := context.Background()

	tab := &connFake{}
	phone := &connFake{}
	router.Connected(ctx, "u7", tab)
	router.Connected(ctx, "u7", phone)

	router.SendToUser(ctx, Message{Type: TypeShare, TargetUserID: "u7", Body: "shared"})

	// Each connection saw the greeting plus the live message.
	if len(tab.sent) != 2 || len(phone.sent) != 2 {
		t.Fatalf("expected delivery on both connections, got %d and %d", len(tab.sent), len(phone.sent))
	}
	if tab.sent[1].Body != "shared" || phone.sent[1].Body != "shared" {
		t.Fatalf("live message missing on a connection")
	}
}

func TestDeadConnectionIsEvictedOthersStillDelivered(t *testing.T) {
	router, reg, _ := newTestRouter()
	ctx := context.Background()

	dead := &connFake{failAt: 2}
	alive := &connFake{}
	router.Connected(ctx, "u7", dead)
	router.Connected(ctx, "u7", alive)

	router.SendToUser(ctx, Message{Type: TypeLike, TargetUserID: "u7", Body: "ping"})

	if !dead.closed {
		t.Errorf("expected dead connection to be closed")
	}
	if len(alive.sent) != 2 || alive.sent[1].Body != "ping" {
		t.Errorf("expected the healthy connection to still receive the message")
	}
	if got := len(reg.Get("u7")); got != 1 {
		t.Errorf("expected registry to retain 1 connection, got %d", got)
	}
}

type brokenPending struct{}

func (brokenPending) Append(context.Context, string, Message) error {
	return errors.New("store down")
}

func (brokenPending) Drain(context.Context, string) ([]Message, error) {
	return nil, nil
}

func TestFlushRequeuesUndeliveredMessages(t *testing.T) {
	router, _, pending := newTestRouter()
	ctx := context.Background()

	router.SendToUser(ctx, Message{Type: TypeLike, TargetUserID: "u7", Body: "one"})
	router.SendToUser(ctx, Message{Type: TypeComment, TargetUserID: "u7", Body: "two"})

	dead := &connFake{failAt: 1}
	router.Connected(ctx, "u7", dead)

	queued, err := pending.Drain(ctx, "u7")
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected both undelivered messages requeued, got %d", len(queued))
	}
	if queued[0].Body != "one" || queued[1].Body != "two" {
		t.Fatalf("requeue lost order: %q then %q", queued[0].Body, queued[1].Body)
	}
}

func TestSendSurvivesBrokenPendingStore(t *testing.T) {
	router := NewRouter(NewRegistry(), brokenPending{}, zap.NewNop())

	err := router.SendToUser(context.Background(), Message{Type: TypeLike, TargetUserID: "u7", Body: "x"})
	if err == nil {
		t.Fatalf("expected the store error to surface")
	}

	// Connected must not panic when both the flush target and the
	// requeue path are unusable.
	router.Connected(context.Background(), "u7", &connFake{failAt: 1})
}

func TestDisconnectedFallsBackToQueue(t *testing.T) {
	router, _, pending := newTestRouter()
	ctx := context.Background()

	conn := &connFake{}
	router.Connected(ctx, "u7", conn)
	router.Disconnected("u7", conn)

	router.SendToUser(ctx, Message{Type: TypeLike, TargetUserID: "u7", Body: "late"})

	queued, _ := pending.Drain(ctx, "u7")
	if len(queued) != 1 || queued[0].Body != "late" {
		t.Fatalf("expected the message to be queued after disconnect, got %v", queued)
	}
}
