package social

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("not the comment owner")
)

type Comment struct {
	PostID    int64     `json:"postId"`
	CommentID string    `json:"commentId"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) IsLiked(ctx context.Context, postID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)
    `, postID, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) AddLike(ctx context.Context, postID int64, userID string) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO post_likes (post_id, user_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (post_id, user_id) DO NOTHING
    `, postID, userID)
	return err
}

func (r *Repository) RemoveLike(ctx context.Context, postID int64, userID string) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
    `, postID, userID)
	return err
}

func (r *Repository) AddComment(ctx context.Context, c *Comment) error {
	c.CommentID = uuid.NewString()
	query := `
        INSERT INTO post_comments (post_id, comment_id, text, user_id, username, comment_date)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING comment_date
    `
	return r.db.QueryRow(ctx, query, c.PostID, c.CommentID, c.Text, c.UserID, c.Username).Scan(&c.CreatedAt)
}

func (r *Repository) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	query := `
        SELECT post_id, comment_id, text, user_id, username, comment_date
        FROM post_comments
        WHERE comment_id = $1
    `
	var c Comment
	err := r.db.QueryRow(ctx, query, commentID).Scan(
		&c.PostID, &c.CommentID, &c.Text, &c.UserID, &c.Username, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) DeleteComment(ctx context.Context, commentID string) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM post_comments WHERE comment_id = $1
    `, commentID)
	return err
}

func (r *Repository) AddShare(ctx context.Context, postID int64, userID, platform string) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO post_shares (post_id, user_id, platform, created_at)
        VALUES ($1, $2, $3, NOW())
    `, postID, userID, platform)
	return err
}

// DeleteByPost removes every like, comment and share referencing the
// post. Zero rows total is a valid outcome: the post may never have
// had interactions, or a racing cascade got there first.
func (r *Repository) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	var total int64
	for _, query := range []string{
		`DELETE FROM post_likes WHERE post_id = $1`,
		`DELETE FROM post_comments WHERE post_id = $1`,
		`DELETE FROM post_shares WHERE post_id = $1`,
	} {
		tag, err := r.db.Exec(ctx, query, postID)
		if err != nil {
			return total, err
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
