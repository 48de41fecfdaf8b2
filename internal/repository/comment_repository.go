package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
)

const commentColumns = `id, article_id, user_id, COALESCE(parent_id, 0), content, like_count, is_deleted, created_at`

// CommentRepository encapsulates comment persistence. Comments soft-delete;
// like_count is the denormalized counter the toggle engine maintains.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	GetByIDTx(ctx context.Context, q Querier, id int64) (*domain.Comment, error)
	SoftDelete(ctx context.Context, id int64) error
	ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]domain.Comment, int64, error)
	AdjustLikeCount(ctx context.Context, q Querier, id int64, delta int) (int, error)
}

type commentRepository struct {
	db DB
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(db DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO article_comments (article_id, user_id, parent_id, content)
        VALUES ($1,$2,NULLIF($3,0),$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		comment.ArticleID,
		comment.UserID,
		comment.ParentID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

// GetByIDTx reads through the caller's Querier so the comment-like toggle
// verifies deletion state under its own transaction.
func (r *commentRepository) GetByIDTx(ctx context.Context, q Querier, id int64) (*domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM article_comments WHERE id=$1`
	var c domain.Comment
	if err := q.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ArticleID,
		&c.UserID,
		&c.ParentID,
		&c.Content,
		&c.LikeCount,
		&c.Deleted,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE article_comments SET is_deleted=TRUE WHERE id=$1 AND is_deleted=FALSE`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]domain.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM article_comments WHERE article_id=$1 AND is_deleted=FALSE`,
		articleID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `SELECT ` + commentColumns + `
        FROM article_comments WHERE article_id=$1 AND is_deleted=FALSE
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, articleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID,
			&c.ArticleID,
			&c.UserID,
			&c.ParentID,
			&c.Content,
			&c.LikeCount,
			&c.Deleted,
			&c.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// AdjustLikeCount applies delta to the comment counter and returns the new
// value. The is_deleted guard makes a like racing a concurrent comment
// deletion fail with no rows, rolling the whole toggle back.
func (r *commentRepository) AdjustLikeCount(ctx context.Context, q Querier, id int64, delta int) (int, error) {
	const query = `UPDATE article_comments SET like_count = like_count + $1 WHERE id=$2 AND is_deleted=FALSE RETURNING like_count`
	var count int
	if err := q.QueryRow(ctx, query, delta, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
