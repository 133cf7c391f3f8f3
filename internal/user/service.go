package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialhub/pkg/events"
)

type Publisher interface {
	Publish(exchange, routingKey string, payload any) error
}

type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service owns user mutations and emits exactly one event per
// successful mutation. Publishes are fire-and-forget: a publish
// failure is logged and never undoes the committed mutation.
type Service struct {
	store  Store
	bus    Publisher
	logger *zap.Logger
}

func NewService(store Store, bus Publisher, logger *zap.Logger) *Service {
	return &Service{store: store, bus: bus, logger: logger}
}

func (s *Service) Register(ctx context.Context, username string) (*User, error) {
	u := &User{
		ID:       uuid.NewString(),
		Username: username,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(events.UserExchange, events.UserRegistered, events.UserRegisteredPayload{
		UserID:    u.ID,
		Username:  u.Username,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish user.registered",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	if err := s.bus.Publish(events.UserExchange, events.UserDeleted, events.UserDeletedPayload{
		UserID:    id,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish user.deleted",
			zap.String("user_id", id),
			zap.Error(err),
		)
	}
	return nil
}
