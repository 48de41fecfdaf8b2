package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func newInteractionService(t *testing.T) (*InteractionService, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewInteractionService(InteractionDependencies{
		DB:          mock,
		ToggleRepo:  repository.NewToggleRepository(mock),
		ArticleRepo: repository.NewArticleRepository(mock),
		CommentRepo: repository.NewCommentRepository(mock),
		UserRepo:    repository.NewUserRepository(mock),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     observability.NewMetrics(),
		Logger:      zap.NewNop(),
	})
	return svc, mock
}

func articleRows(state string, likeCount, collectCount int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "content", "cover_img", "state", "category_id", "author_id",
		"like_count", "collect_count", "created_at", "updated_at",
	}).AddRow(
		int64(10), "title", "content", "", state, int64(1), int64(2),
		likeCount, collectCount, time.Now(), time.Now(),
	)
}

func commentRows(deleted bool, likeCount int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "article_id", "user_id", "coalesce", "content", "like_count", "is_deleted", "created_at",
	}).AddRow(int64(20), int64(10), int64(2), int64(0), "nice", likeCount, deleted, time.Now())
}

func expectArticlePrecheck(mock pgxmock.PgxPoolIface, state string) {
	mock.ExpectQuery(`FROM articles WHERE id=\$1`).
		WithArgs(int64(10)).
		WillReturnRows(articleRows(state, 3, 1))
}

func TestToggleArticleLikeFirstTime(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "published")
	mock.ExpectQuery(`FROM article_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO article_likes`).
		WithArgs(int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE articles SET like_count = like_count \+ \$1 WHERE id=\$2 RETURNING like_count`).
		WithArgs(1, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(4))
	mock.ExpectCommit()

	result, err := svc.ToggleArticleLike(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 4, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleLikeSecondTimeUntoggles(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "published")
	mock.ExpectQuery(`FROM article_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "subject_id", "object_id", "is_deleted", "created_at"}).
			AddRow(int64(1), int64(7), int64(10), false, time.Now()))
	mock.ExpectExec(`UPDATE article_likes SET is_deleted=\$1`).
		WithArgs(true, int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`UPDATE articles SET like_count = like_count \+ \$1`).
		WithArgs(-1, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(3))
	mock.ExpectCommit()

	result, err := svc.ToggleArticleLike(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Equal(t, 3, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleLikeRestoresSoftDeletedRow(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "published")
	mock.ExpectQuery(`FROM article_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "subject_id", "object_id", "is_deleted", "created_at"}).
			AddRow(int64(1), int64(7), int64(10), true, time.Now()))
	mock.ExpectExec(`UPDATE article_likes SET is_deleted=\$1`).
		WithArgs(false, int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`UPDATE articles SET like_count = like_count \+ \$1`).
		WithArgs(1, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(4))
	mock.ExpectCommit()

	result, err := svc.ToggleArticleLike(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 4, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleLikeFirstInsertRace(t *testing.T) {
	// Two first-ever likes race: neither finds a row to lock, and this
	// transaction loses the insert. The conflict clause inserts nothing,
	// the winner's committed row is re-read under the lock, and the toggle
	// proceeds as an untoggle instead of failing.
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "published")
	mock.ExpectQuery(`FROM article_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO article_likes`).
		WithArgs(int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(`FROM article_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "subject_id", "object_id", "is_deleted", "created_at"}).
			AddRow(int64(1), int64(7), int64(10), false, time.Now()))
	mock.ExpectExec(`UPDATE article_likes SET is_deleted=\$1`).
		WithArgs(true, int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`UPDATE articles SET like_count = like_count \+ \$1`).
		WithArgs(-1, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(4))
	mock.ExpectCommit()

	result, err := svc.ToggleArticleLike(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Equal(t, 4, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleLikeUnpublished(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "draft")
	mock.ExpectRollback()

	_, err := svc.ToggleArticleLike(context.Background(), 7, 10)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OBJECT_NOT_ELIGIBLE", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleLikeMissingArticle(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM articles WHERE id=\$1`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ToggleArticleLike(context.Background(), 7, 99)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleArticleCollect(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	expectArticlePrecheck(mock, "published")
	mock.ExpectQuery(`FROM article_collects WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(10)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO article_collects`).
		WithArgs(int64(7), int64(10)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE articles SET collect_count = collect_count \+ \$1`).
		WithArgs(1, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"collect_count"}).AddRow(2))
	mock.ExpectCommit()

	result, err := svc.ToggleArticleCollect(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 2, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCommentLikeDeletedComment(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM article_comments WHERE id=\$1`).
		WithArgs(int64(20)).
		WillReturnRows(commentRows(true, 0))
	mock.ExpectRollback()

	_, err := svc.ToggleCommentLike(context.Background(), 7, 20)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OBJECT_NOT_ELIGIBLE", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCommentLikeDeletedMidFlight(t *testing.T) {
	// The comment passes the precheck but is soft-deleted by another
	// transaction before the counter update lands. The guarded UPDATE
	// matches nothing and the whole toggle rolls back.
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM article_comments WHERE id=\$1`).
		WithArgs(int64(20)).
		WillReturnRows(commentRows(false, 5))
	mock.ExpectQuery(`FROM comment_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(20)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO comment_likes`).
		WithArgs(int64(7), int64(20)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE article_comments SET like_count = like_count \+ \$1 WHERE id=\$2 AND is_deleted=FALSE RETURNING like_count`).
		WithArgs(1, int64(20)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ToggleCommentLike(context.Background(), 7, 20)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OBJECT_NOT_ELIGIBLE", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCommentLikeSuccess(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM article_comments WHERE id=\$1`).
		WithArgs(int64(20)).
		WillReturnRows(commentRows(false, 5))
	mock.ExpectQuery(`FROM comment_likes WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(20)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO comment_likes`).
		WithArgs(int64(7), int64(20)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE article_comments SET like_count`).
		WithArgs(1, int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(6))
	mock.ExpectCommit()

	result, err := svc.ToggleCommentLike(context.Background(), 7, 20)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 6, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowSelf(t *testing.T) {
	svc, mock := newInteractionService(t)

	_, err := svc.ToggleFollow(context.Background(), 7, 7)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN_ACTION", domainErr.Code)
	// No transaction is opened for a self-follow.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowSuccess(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id=\$1\)`).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM user_follows WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(8)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO user_follows`).
		WithArgs(int64(7), int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	result, err := svc.ToggleFollow(context.Background(), 7, 8)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 0, result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowUnknownTarget(t *testing.T) {
	svc, mock := newInteractionService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id=\$1\)`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.ToggleFollow(context.Background(), 7, 99)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTogglePublishesEvent(t *testing.T) {
	svc, mock := newInteractionService(t)

	var published []events.Event
	svc.dispatcher.Subscribe(events.EventUserFollowed, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id=\$1\)`).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM user_follows WHERE subject_id=\$1 AND object_id=\$2 FOR UPDATE`).
		WithArgs(int64(7), int64(8)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO user_follows`).
		WithArgs(int64(7), int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, err := svc.ToggleFollow(context.Background(), 7, 8)
	require.NoError(t, err)

	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.TogglePayload)
	require.True(t, ok)
	assert.Equal(t, domain.KindUserFollow, payload.Kind)
	assert.True(t, payload.Active)
}
