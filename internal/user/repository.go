package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	TotalPosts int       `json:"totalPosts"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	query := `
        INSERT INTO users (id, username, total_posts, created_at)
        VALUES ($1, $2, 0, NOW())
        RETURNING created_at
    `
	return r.db.QueryRow(ctx, query, u.ID, u.Username).Scan(&u.CreatedAt)
}

func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
        SELECT id, username, total_posts, created_at
        FROM users
        WHERE id = $1
    `
	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.TotalPosts, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementPostCount bumps the materialized post counter. An unknown
// user id updates zero rows and is not an error.
func (r *Repository) IncrementPostCount(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE users SET total_posts = total_posts + 1 WHERE id = $1
    `, userID)
	return err
}

// DecrementPostCount lowers the counter, floor-clamped at zero.
func (r *Repository) DecrementPostCount(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE users SET total_posts = GREATEST(total_posts - 1, 0) WHERE id = $1
    `, userID)
	return err
}
