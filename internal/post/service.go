package post

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"socialhub/pkg/events"
	"socialhub/pkg/outbox"
)

// Service owns post mutations. Events go through the transactional
// outbox: the row change and the pending event commit together, and
// the relay dispatcher publishes them to the broker afterwards.
type Service struct {
	db     *pgxpool.Pool
	repo   *Repository
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewService(db *pgxpool.Pool, repo *Repository, ob *outbox.Repository, logger *zap.Logger) *Service {
	return &Service{db: db, repo: repo, outbox: ob, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID, username, caption string) (*Post, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p := &Post{
		UserID:   userID,
		Username: username,
		Caption:  caption,
	}
	if err := s.repo.CreateTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := s.outbox.InsertTx(ctx, tx, events.PostExchange, events.PostCreated, events.PostCreatedPayload{
		PostID:    p.ID,
		UserID:    p.UserID,
		Caption:   p.Caption,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Post created",
		zap.Int64("post_id", p.ID),
		zap.String("user_id", p.UserID),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	return s.repo.GetPost(ctx, id)
}

func (s *Service) UpdateCaption(ctx context.Context, id int64, caption string) error {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.repo.UpdateCaptionTx(ctx, tx, id, caption); err != nil {
		return err
	}

	if err := s.outbox.InsertTx(ctx, tx, events.PostExchange, events.PostUpdated, events.PostUpdatedPayload{
		PostID:    id,
		UserID:    p.UserID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
		return err
	}

	if err := s.outbox.InsertTx(ctx, tx, events.PostExchange, events.PostDeleted, events.PostDeletedPayload{
		PostID:    id,
		UserID:    p.UserID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("Post deleted",
		zap.Int64("post_id", id),
		zap.String("user_id", p.UserID),
	)
	return nil
}
