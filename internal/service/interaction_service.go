package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// InteractionService runs the generic toggle algorithm behind likes,
// collects, comment likes and follows.
//
// Each toggle is one transaction: precondition check, locked ledger lookup,
// ledger mutation, counter adjustment. The lookup ignores the soft-delete
// flag and takes a row lock, so two concurrent toggles from the same actor
// on the same object serialize instead of racing the counter. First-time
// inserts racing each other serialize on the pair's unique index: the loser
// waits out the winner's transaction, then re-reads the winner's row and
// flips it like any other existing row.
type InteractionService struct {
	db         repository.DB
	toggles    repository.ToggleRepository
	articles   repository.ArticleRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// InteractionDependencies bundles requirements for the service.
type InteractionDependencies struct {
	DB          repository.DB
	ToggleRepo  repository.ToggleRepository
	ArticleRepo repository.ArticleRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewInteractionService builds the service.
func NewInteractionService(deps InteractionDependencies) *InteractionService {
	return &InteractionService{
		db:         deps.DB,
		toggles:    deps.ToggleRepo,
		articles:   deps.ArticleRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// ToggleArticleLike flips the actor's like on a published article and moves
// articles.like_count with it.
func (s *InteractionService) ToggleArticleLike(ctx context.Context, actorID, articleID int64) (*domain.ToggleResult, error) {
	return s.toggleArticleCounter(ctx, domain.KindArticleLike, repository.CounterLike, actorID, articleID, events.EventArticleLiked)
}

// ToggleArticleCollect flips the actor's collect on a published article and
// moves articles.collect_count with it.
func (s *InteractionService) ToggleArticleCollect(ctx context.Context, actorID, articleID int64) (*domain.ToggleResult, error) {
	return s.toggleArticleCounter(ctx, domain.KindArticleCollect, repository.CounterCollect, actorID, articleID, events.EventArticleCollected)
}

func (s *InteractionService) toggleArticleCounter(ctx context.Context, kind domain.ToggleKind, column repository.CounterColumn, actorID, articleID int64, eventType events.EventType) (*domain.ToggleResult, error) {
	result, err := s.runToggle(ctx, kind, actorID, articleID,
		func(tx pgx.Tx) error {
			article, err := s.articles.GetByIDTx(ctx, tx, articleID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("article", map[string]any{"id": articleID})
				}
				return err
			}
			if !article.Published() {
				return apperrors.NewObjectNotEligible("article is not published")
			}
			return nil
		},
		func(tx pgx.Tx, delta int) (int, error) {
			return s.articles.AdjustCounter(ctx, tx, articleID, column, delta)
		},
	)
	if err != nil {
		return nil, err
	}
	s.publishToggle(ctx, eventType, kind, actorID, articleID, result)
	return result, nil
}

// ToggleCommentLike flips the actor's like on a live comment. A comment
// deleted concurrently with the toggle aborts the whole transaction.
func (s *InteractionService) ToggleCommentLike(ctx context.Context, actorID, commentID int64) (*domain.ToggleResult, error) {
	result, err := s.runToggle(ctx, domain.KindCommentLike, actorID, commentID,
		func(tx pgx.Tx) error {
			comment, err := s.comments.GetByIDTx(ctx, tx, commentID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("comment", map[string]any{"id": commentID})
				}
				return err
			}
			if comment.Deleted {
				return apperrors.NewObjectNotEligible("comment has been deleted")
			}
			return nil
		},
		func(tx pgx.Tx, delta int) (int, error) {
			count, err := s.comments.AdjustLikeCount(ctx, tx, commentID, delta)
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, apperrors.NewObjectNotEligible("comment has been deleted")
			}
			return count, err
		},
	)
	if err != nil {
		return nil, err
	}
	s.publishToggle(ctx, events.EventCommentLiked, domain.KindCommentLike, actorID, commentID, result)
	return result, nil
}

// ToggleFollow flips the actor's follow of another user. Follow counts are
// derived by listing, so no counter moves.
func (s *InteractionService) ToggleFollow(ctx context.Context, actorID, targetID int64) (*domain.ToggleResult, error) {
	if actorID == targetID {
		return nil, apperrors.NewForbiddenAction("cannot follow yourself")
	}

	result, err := s.runToggle(ctx, domain.KindUserFollow, actorID, targetID,
		func(tx pgx.Tx) error {
			exists, err := s.users.Exists(ctx, tx, targetID)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.NewNotFound("user", map[string]any{"id": targetID})
			}
			return nil
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	s.publishToggle(ctx, events.EventUserFollowed, domain.KindUserFollow, actorID, targetID, result)
	return result, nil
}

// runToggle executes steps of the toggle algorithm as one transaction:
//
//  1. no row for the pair: insert active, counter +1
//  2. row active: soft-delete, counter -1
//  3. row soft-deleted: restore the same row, counter +1
//
// Restoring reuses the original row on purpose; created_at keeps the first
// interaction time and the pair can never grow a second row.
func (s *InteractionService) runToggle(
	ctx context.Context,
	kind domain.ToggleKind,
	actorID, objectID int64,
	precheck func(pgx.Tx) error,
	adjust func(pgx.Tx, int) (int, error),
) (*domain.ToggleResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := precheck(tx); err != nil {
		return nil, err
	}

	rec, err := s.toggles.FindForUpdate(ctx, tx, kind, actorID, objectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if rec == nil {
		inserted, err := s.toggles.Insert(ctx, tx, kind, actorID, objectID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if !inserted {
			// Lost a first-insert race. The conflict check waited out the
			// winner's transaction, so the row is visible now; re-read it
			// under the lock and flip it like any existing row.
			rec, err = s.toggles.FindForUpdate(ctx, tx, kind, actorID, objectID)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			if rec == nil {
				return nil, apperrors.NewInternalError(errors.New("toggle row vanished after insert conflict"))
			}
		}
	}

	var active bool
	switch {
	case rec == nil:
		active = true
	case !rec.Deleted:
		if err := s.toggles.SetDeleted(ctx, tx, kind, actorID, objectID, true); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		active = false
	default:
		if err := s.toggles.SetDeleted(ctx, tx, kind, actorID, objectID, false); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		active = true
	}

	count := 0
	if adjust != nil {
		delta := -1
		if active {
			delta = 1
		}
		count, err = adjust(tx, delta)
		if err != nil {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				return nil, err
			}
			return nil, apperrors.NewInternalError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordToggle(kind.String(), active)
	return &domain.ToggleResult{Active: active, Count: count}, nil
}

// FollowingIDs lists users the subject follows.
func (s *InteractionService) FollowingIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, error) {
	return s.toggles.ListObjectIDs(ctx, domain.KindUserFollow, userID, limit, offset)
}

// FollowerIDs lists users following the subject.
func (s *InteractionService) FollowerIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, error) {
	return s.toggles.ListSubjectIDs(ctx, domain.KindUserFollow, userID, limit, offset)
}

func (s *InteractionService) publishToggle(ctx context.Context, eventType events.EventType, kind domain.ToggleKind, actorID, objectID int64, result *domain.ToggleResult) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.TogglePayload{
			Kind:     kind,
			KindName: kind.String(),
			ObjectID: objectID,
			Active:   result.Active,
			Count:    result.Count,
		},
	})
}
