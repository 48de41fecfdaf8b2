package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CommentService coordinates comment workflows.
type CommentService struct {
	comments   repository.CommentRepository
	articles   repository.ArticleRepository
	dispatcher events.Dispatcher
}

// NewCommentService builds the service.
func NewCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{comments: comments, articles: articles, dispatcher: dispatcher}
}

// Add creates a comment on a published article. ParentID zero means a
// top-level comment.
func (s *CommentService) Add(ctx context.Context, userID, articleID, parentID int64, content string) (*domain.Comment, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", nil)
		}
		return nil, err
	}
	if !article.Published() {
		return nil, apperrors.NewObjectNotEligible("article is not published")
	}

	if parentID != 0 {
		parent, err := s.comments.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("parent comment", nil)
			}
			return nil, err
		}
		if parent.Deleted || parent.ArticleID != articleID {
			return nil, apperrors.NewObjectNotEligible("parent comment unavailable")
		}
	}

	comment := &domain.Comment{
		ArticleID: articleID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			ActorID:   userID,
			Timestamp: time.Now(),
			Payload: events.CommentAddedPayload{
				CommentID: comment.ID,
				ArticleID: articleID,
				ParentID:  parentID,
				Preview:   preview(content, 80),
			},
		})
	}
	return comment, nil
}

// Delete soft-deletes a comment. Only its author or an admin may delete;
// the row stays so replies and like records keep their target.
func (s *CommentService) Delete(ctx context.Context, id, callerID int64, role domain.Role) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", nil)
		}
		return err
	}
	if comment.Deleted {
		return apperrors.NewNotFound("comment", nil)
	}
	if comment.UserID != callerID && role != domain.RoleAdmin {
		return apperrors.NewForbiddenAction("not the comment owner")
	}
	return s.comments.SoftDelete(ctx, id)
}

// ListByArticle pages through live comments, newest first.
func (s *CommentService) ListByArticle(ctx context.Context, articleID int64, page, pageSize int) ([]domain.Comment, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	return s.comments.ListByArticle(ctx, articleID, limit, offset)
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
