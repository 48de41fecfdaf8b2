package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
)

const articleColumns = `id, title, content, cover_img, state, category_id, author_id,
               like_count, collect_count, created_at, updated_at`

// CounterColumn names a denormalized counter on the articles table.
type CounterColumn string

const (
	CounterLike    CounterColumn = "like_count"
	CounterCollect CounterColumn = "collect_count"
)

// ArticleRepository encapsulates article persistence, including the
// denormalized interaction counters the toggle engine keeps in step.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	GetByIDTx(ctx context.Context, q Querier, id int64) (*domain.Article, error)
	ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]domain.Article, int64, error)
	ListPublished(ctx context.Context, categoryID *int64, limit, offset int) ([]domain.Article, int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Article, error)
	AdjustCounter(ctx context.Context, q Querier, id int64, column CounterColumn, delta int) (int, error)
}

type articleRepository struct {
	db DB
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(db DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	const query = `
        INSERT INTO articles (title, content, cover_img, state, category_id, author_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		article.Title,
		article.Content,
		article.CoverImg,
		article.State,
		article.CategoryID,
		article.AuthorID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article) error {
	const query = `
        UPDATE articles SET title=$1, content=$2, cover_img=$3, state=$4, category_id=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		article.Title,
		article.Content,
		article.CoverImg,
		article.State,
		article.CategoryID,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

// GetByIDTx reads through the given Querier so toggle preconditions see the
// row under the surrounding transaction.
func (r *articleRepository) GetByIDTx(ctx context.Context, q Querier, id int64) (*domain.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id=$1`
	var a domain.Article
	if err := q.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.CoverImg,
		&a.State,
		&a.CategoryID,
		&a.AuthorID,
		&a.LikeCount,
		&a.CollectCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]domain.Article, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles WHERE author_id=$1`, authorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `SELECT ` + articleColumns + `
        FROM articles WHERE author_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanArticles(rows)
	return list, total, err
}

func (r *articleRepository) ListPublished(ctx context.Context, categoryID *int64, limit, offset int) ([]domain.Article, int64, error) {
	countQuery := `SELECT COUNT(*) FROM articles WHERE state='published'`
	listQuery := `SELECT ` + articleColumns + `
        FROM articles WHERE state='published'`
	args := []any{}
	if categoryID != nil {
		countQuery += ` AND category_id=$1`
		listQuery += ` AND category_id=$1`
		args = append(args, *categoryID)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	listQuery += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanArticles(rows)
	return list, total, err
}

// ListByIDs fetches the given articles in store order; callers that need a
// specific order reorder by id themselves.
func (r *articleRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// AdjustCounter applies delta to a counter column and returns the new value.
// Callers pass their transaction so the counter moves with the ledger row.
func (r *articleRepository) AdjustCounter(ctx context.Context, q Querier, id int64, column CounterColumn, delta int) (int, error) {
	// column comes from a closed constant set, never from input
	query := `UPDATE articles SET ` + string(column) + ` = ` + string(column) + ` + $1 WHERE id=$2 RETURNING ` + string(column)
	var count int
	if err := q.QueryRow(ctx, query, delta, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanArticles(rows pgx.Rows) ([]domain.Article, error) {
	var list []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Content,
			&a.CoverImg,
			&a.State,
			&a.CategoryID,
			&a.AuthorID,
			&a.LikeCount,
			&a.CollectCount,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
