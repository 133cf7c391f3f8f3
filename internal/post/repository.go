package post

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("post not found")

type Post struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, p *Post) error {
	query := `
        INSERT INTO posts (user_id, username, caption, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	return tx.QueryRow(ctx, query, p.UserID, p.Username, p.Caption).Scan(&p.ID, &p.CreatedAt)
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*Post, error) {
	query := `
        SELECT id, user_id, username, caption, created_at
        FROM posts
        WHERE id = $1
    `
	var p Post
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Username, &p.Caption, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) UpdateCaptionTx(ctx context.Context, tx pgx.Tx, id int64, caption string) error {
	tag, err := tx.Exec(ctx, `UPDATE posts SET caption = $2 WHERE id = $1`, id, caption)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every post owned by userID and reports how
// many were deleted. Zero is a valid outcome.
func (r *Repository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
