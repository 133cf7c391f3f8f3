package notification

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"socialhub/pkg/events"
)

type senderFake struct {
	sent []Message
	err  error
}

func (s *senderFake) SendToUser(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestHandleLikeBuildsMessageForOwner(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	payload, _ := json.Marshal(events.PostLikedPayload{
		PostID:  42,
		UserID:  "owner-1",
		LikerID: "liker-9",
		LikedBy: "alice",
	})
	if err := consumer.Handle(context.Background(), payload, events.PostLiked); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Type != TypeLike || msg.TargetUserID != "owner-1" {
		t.Errorf("unexpected addressing: %+v", msg)
	}
	if msg.Body != "alice liked your post" {
		t.Errorf("unexpected body: %q", msg.Body)
	}
}

func TestHandleCommentCarriesText(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	payload, _ := json.Marshal(events.PostCommentedPayload{
		PostID:    42,
		UserID:    "owner-1",
		CommentID: "c-1",
		Username:  "bob",
		Text:      "nice shot",
	})
	if err := consumer.Handle(context.Background(), payload, events.PostCommented); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msg := sender.sent[0]
	if msg.Type != TypeComment || msg.Body != "bob commented on your post" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Text != "nice shot" || msg.CommentID != "c-1" {
		t.Errorf("comment details lost: %+v", msg)
	}
}

func TestHandleShareNamesPlatform(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	payload, _ := json.Marshal(events.PostSharedPayload{
		PostID:   42,
		UserID:   "owner-1",
		SharedBy: "carol",
		Platform: "twitter",
	})
	if err := consumer.Handle(context.Background(), payload, events.PostShared); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msg := sender.sent[0]
	if msg.Type != TypeShare || msg.Body != "Your post was shared on twitter" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestHandleSkipsEventWithoutTarget(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	payload, _ := json.Marshal(events.PostLikedPayload{PostID: 42, LikedBy: "alice"})
	if err := consumer.Handle(context.Background(), payload, events.PostLiked); err != nil {
		t.Fatalf("expected no error for unaddressed event, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no delivery, got %d", len(sender.sent))
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	err := consumer.Handle(context.Background(), json.RawMessage(`{"postId":"not-a-number"}`), events.PostLiked)
	if err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
}

func TestHandleIgnoresUnknownRoutingKey(t *testing.T) {
	sender := &senderFake{}
	consumer := NewConsumer(sender, zap.NewNop())

	if err := consumer.Handle(context.Background(), json.RawMessage(`{}`), "post.archived"); err != nil {
		t.Fatalf("expected unknown key to be ignored, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no delivery for unknown key")
	}
}
