package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// ArticleService coordinates article workflows.
type ArticleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	toggles    repository.ToggleRepository
}

// NewArticleService builds the service.
func NewArticleService(articles repository.ArticleRepository, categories repository.CategoryRepository, toggles repository.ToggleRepository) *ArticleService {
	return &ArticleService{articles: articles, categories: categories, toggles: toggles}
}

// ArticleInput describes create/update payloads.
type ArticleInput struct {
	Title      string
	Content    string
	CoverImg   string
	State      domain.ArticleState
	CategoryID int64
}

// ArticleDetail is an article plus the viewer's interaction flags.
type ArticleDetail struct {
	domain.Article
	Liked     bool `json:"liked"`
	Collected bool `json:"collected"`
}

// Create stores a new article for the author. Only authors and admins may
// publish.
func (s *ArticleService) Create(ctx context.Context, authorID int64, role domain.Role, input ArticleInput) (*domain.Article, error) {
	if !role.CanPublish() {
		return nil, apperrors.NewForbiddenAction("readers cannot publish articles")
	}
	if !input.State.Valid() {
		return nil, apperrors.NewValidationError("unknown article state", nil)
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", nil)
		}
		return nil, err
	}

	article := &domain.Article{
		Title:      input.Title,
		Content:    input.Content,
		CoverImg:   input.CoverImg,
		State:      input.State,
		CategoryID: input.CategoryID,
		AuthorID:   authorID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Update modifies an article owned by the caller; admins may edit any.
func (s *ArticleService) Update(ctx context.Context, id, callerID int64, role domain.Role, input ArticleInput) (*domain.Article, error) {
	article, err := s.getOwned(ctx, id, callerID, role)
	if err != nil {
		return nil, err
	}
	if !input.State.Valid() {
		return nil, apperrors.NewValidationError("unknown article state", nil)
	}

	article.Title = input.Title
	article.Content = input.Content
	article.CoverImg = input.CoverImg
	article.State = input.State
	article.CategoryID = input.CategoryID
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes an article owned by the caller; admins may delete any.
func (s *ArticleService) Delete(ctx context.Context, id, callerID int64, role domain.Role) error {
	if _, err := s.getOwned(ctx, id, callerID, role); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}

// Detail returns an article for its owner or an admin, any state.
func (s *ArticleService) Detail(ctx context.Context, id, callerID int64, role domain.Role) (*domain.Article, error) {
	return s.getOwned(ctx, id, callerID, role)
}

// PublicDetail returns a published article together with the viewer's
// like/collect flags. viewerID zero means anonymous: flags stay false.
func (s *ArticleService) PublicDetail(ctx context.Context, id, viewerID int64) (*ArticleDetail, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", nil)
		}
		return nil, err
	}
	if !article.Published() {
		return nil, apperrors.NewNotFound("article", nil)
	}

	detail := &ArticleDetail{Article: *article}
	if viewerID != 0 {
		if liked, err := s.toggles.IsActive(ctx, domain.KindArticleLike, viewerID, id); err == nil {
			detail.Liked = liked
		}
		if collected, err := s.toggles.IsActive(ctx, domain.KindArticleCollect, viewerID, id); err == nil {
			detail.Collected = collected
		}
	}
	return detail, nil
}

// ListByAuthor pages through the caller's own articles.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID int64, page, pageSize int) ([]domain.Article, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	return s.articles.ListByAuthor(ctx, authorID, limit, offset)
}

// Collections pages through the articles the user has collected, newest
// collect first. Totals come from the ledger so the page count matches what
// the toggles say, not what happens to still be listed.
func (s *ArticleService) Collections(ctx context.Context, userID int64, page, pageSize int) ([]domain.Article, int64, error) {
	limit, offset := pageToRange(page, pageSize)

	total, err := s.toggles.CountBySubject(ctx, domain.KindArticleCollect, userID)
	if err != nil {
		return nil, 0, err
	}

	ids, err := s.toggles.ListObjectIDs(ctx, domain.KindArticleCollect, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, total, nil
	}

	articles, err := s.articles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[int64]domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	// Preserve ledger order; an article deleted since collecting simply
	// drops out of the page.
	ordered := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, total, nil
}

// Home pages through published articles, optionally filtered by category.
func (s *ArticleService) Home(ctx context.Context, categoryID *int64, page, pageSize int) ([]domain.Article, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	return s.articles.ListPublished(ctx, categoryID, limit, offset)
}

func (s *ArticleService) getOwned(ctx context.Context, id, callerID int64, role domain.Role) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", nil)
		}
		return nil, err
	}
	if article.AuthorID != callerID && role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenAction("not the article owner")
	}
	return article, nil
}

func pageToRange(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return pageSize, (page - 1) * pageSize
}
