package events

import "time"

// Topic exchanges, one per entity family. Wildcard bindings such as
// "user.*" are valid against any of them.
const (
	UserExchange         = "user_exchange"
	PostExchange         = "post_exchange"
	SocialExchange       = "social_exchange"
	NotificationExchange = "notification_exchange"
)

// Durable queues, one logical consumer group each.
const (
	UserQueue         = "user_queue"
	PostQueue         = "post_queue"
	SocialQueue       = "social_queue"
	NotificationQueue = "notification_queue"
)

// Routing keys follow the <entity>.<verb> taxonomy.
const (
	UserRegistered = "user.registered"
	UserDeleted    = "user.deleted"

	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"

	PostLiked      = "post.liked"
	PostUnliked    = "post.unliked"
	PostCommented  = "post.commented"
	CommentDeleted = "comment.deleted"
	PostShared     = "post.shared"
)

type UserRegisteredPayload struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type UserDeletedPayload struct {
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type PostCreatedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Caption   string    `json:"caption,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PostUpdatedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type PostDeletedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// PostLikedPayload is addressed to the post owner: UserID is the user
// who should receive the notification, not the liker.
type PostLikedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	LikerID   string    `json:"likerId"`
	LikedBy   string    `json:"likedBy"`
	PostTitle string    `json:"postTitle,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PostUnlikedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type PostCommentedPayload struct {
	PostID      int64     `json:"postId"`
	CommentID   string    `json:"commentId"`
	UserID      string    `json:"userId"`
	CommenterID string    `json:"commenterId"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	PostTitle   string    `json:"postTitle,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type CommentDeletedPayload struct {
	CommentID string    `json:"commentId"`
	PostID    int64     `json:"postId"`
	Timestamp time.Time `json:"timestamp"`
}

type PostSharedPayload struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	SharedBy  string    `json:"sharedBy"`
	Platform  string    `json:"platform"`
	Timestamp time.Time `json:"timestamp"`
}
