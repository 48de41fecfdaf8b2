package service

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/repository"
)

func newArticleServiceMock(t *testing.T) (*ArticleService, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewArticleService(
		repository.NewArticleRepository(mock),
		repository.NewCategoryRepository(mock),
		repository.NewToggleRepository(mock),
	)
	return svc, mock
}

func collectedArticleRows(ids ...int64) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "title", "content", "cover_img", "state", "category_id", "author_id",
		"like_count", "collect_count", "created_at", "updated_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "title", "content", "", "published", int64(1), int64(2),
			0, 1, time.Now(), time.Now())
	}
	return rows
}

func TestCollections(t *testing.T) {
	svc, mock := newArticleServiceMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT object_id FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(7), 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"object_id"}).AddRow(int64(11)).AddRow(int64(10)))
	// The store returns ascending ids; the page must come back in ledger
	// order, newest collect first.
	mock.ExpectQuery(`FROM articles WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{11, 10}).
		WillReturnRows(collectedArticleRows(10, 11))

	list, total, err := svc.Collections(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(11), list[0].ID)
	assert.Equal(t, int64(10), list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionsEmpty(t *testing.T) {
	svc, mock := newArticleServiceMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`SELECT object_id FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(7), 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"object_id"}))

	list, total, err := svc.Collections(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionsSkipsDeletedArticles(t *testing.T) {
	// A collected article hard-deleted by its author drops out of the page
	// while the ledger total still reflects the live collect rows.
	svc, mock := newArticleServiceMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT object_id FROM article_collects WHERE subject_id=\$1 AND is_deleted=FALSE ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(7), 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"object_id"}).AddRow(int64(11)).AddRow(int64(10)))
	mock.ExpectQuery(`FROM articles WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{11, 10}).
		WillReturnRows(collectedArticleRows(10))

	list, total, err := svc.Collections(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
