package social

import (
	"context"
	"time"

	"go.uber.org/zap"

	"socialhub/pkg/events"
)

type Publisher interface {
	Publish(exchange, routingKey string, payload any) error
}

type OwnerLookup interface {
	GetOwner(ctx context.Context, postID int64) (*PostOwner, error)
}

type Store interface {
	IsLiked(ctx context.Context, postID int64, userID string) (bool, error)
	AddLike(ctx context.Context, postID int64, userID string) error
	RemoveLike(ctx context.Context, postID int64, userID string) error
	AddComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, commentID string) (*Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
	AddShare(ctx context.Context, postID int64, userID, platform string) error
}

// Service owns social mutations. Each successful mutation emits
// exactly one event, fire-and-forget: publish failures are logged and
// never undo the mutation. Notification-bearing events are addressed
// to the post owner, looked up from the post service; a failed lookup
// or a self-interaction suppresses the event, not the mutation.
type Service struct {
	store  Store
	bus    Publisher
	posts  OwnerLookup
	logger *zap.Logger
}

func NewService(store Store, bus Publisher, posts OwnerLookup, logger *zap.Logger) *Service {
	return &Service{store: store, bus: bus, posts: posts, logger: logger}
}

func (s *Service) publish(routingKey string, payload any) {
	if err := s.bus.Publish(events.SocialExchange, routingKey, payload); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}

func (s *Service) owner(ctx context.Context, postID int64) *PostOwner {
	owner, err := s.posts.GetOwner(ctx, postID)
	if err != nil {
		s.logger.Error("Failed to look up post owner",
			zap.Int64("post_id", postID),
			zap.Error(err),
		)
		return nil
	}
	return owner
}

// ToggleLike likes the post, or removes an existing like. It reports
// whether the post is liked afterwards.
func (s *Service) ToggleLike(ctx context.Context, postID int64, userID, username string) (bool, error) {
	liked, err := s.store.IsLiked(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.store.RemoveLike(ctx, postID, userID); err != nil {
			return true, err
		}
		s.publish(events.PostUnliked, events.PostUnlikedPayload{
			PostID:    postID,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
		})
		return false, nil
	}

	if err := s.store.AddLike(ctx, postID, userID); err != nil {
		return false, err
	}

	if owner := s.owner(ctx, postID); owner != nil && owner.OwnerID != userID {
		s.publish(events.PostLiked, events.PostLikedPayload{
			PostID:    postID,
			UserID:    owner.OwnerID,
			LikerID:   userID,
			LikedBy:   username,
			PostTitle: owner.Caption,
			Timestamp: time.Now().UTC(),
		})
	}
	return true, nil
}

func (s *Service) AddComment(ctx context.Context, postID int64, userID, username, text string) (*Comment, error) {
	comment := &Comment{
		PostID:   postID,
		Text:     text,
		UserID:   userID,
		Username: username,
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	if owner := s.owner(ctx, postID); owner != nil && owner.OwnerID != userID {
		s.publish(events.PostCommented, events.PostCommentedPayload{
			PostID:      postID,
			CommentID:   comment.CommentID,
			UserID:      owner.OwnerID,
			CommenterID: userID,
			Username:    username,
			Text:        text,
			PostTitle:   owner.Caption,
			Timestamp:   time.Now().UTC(),
		})
	}
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.publish(events.CommentDeleted, events.CommentDeletedPayload{
		CommentID: commentID,
		PostID:    comment.PostID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) Share(ctx context.Context, postID int64, userID, username, platform string) error {
	if err := s.store.AddShare(ctx, postID, userID, platform); err != nil {
		return err
	}

	if owner := s.owner(ctx, postID); owner != nil && owner.OwnerID != userID {
		s.publish(events.PostShared, events.PostSharedPayload{
			PostID:    postID,
			UserID:    owner.OwnerID,
			SharedBy:  username,
			Platform:  platform,
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}
