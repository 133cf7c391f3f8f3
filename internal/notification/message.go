package notification

import "time"

type Type string

const (
	TypeLike    Type = "LIKE"
	TypeComment Type = "COMMENT"
	TypeShare   Type = "SHARE"
	TypeSystem  Type = "SYSTEM"
)

// Message is what goes over the realtime channel. It is owned by the
// router from the moment a consumer builds it until delivery (or until
// it is parked in a pending queue).
type Message struct {
	Type Type `json:"type"`

	// TargetUserID addresses the message; it is routing state, not
	// part of the wire payload.
	TargetUserID string `json:"-"`

	PostID    int64     `json:"postId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"text,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
