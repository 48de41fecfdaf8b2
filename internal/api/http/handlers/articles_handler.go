package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/service"
	"github.com/spec-kit/blog-service/pkg/response"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// ArticlesHandler exposes article endpoints.
type ArticlesHandler struct {
	articles     *service.ArticleService
	interactions *service.InteractionService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articles *service.ArticleService, interactions *service.InteractionService) *ArticlesHandler {
	return &ArticlesHandler{articles: articles, interactions: interactions}
}

// Create handles POST /article.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg, nil)
	}

	id, _ := auth.IdentityFromContext(c)
	article, err := h.articles.Create(c.UserContext(), id.UserID, id.Role, toArticleInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, article)
}

// Update handles PUT /article/:id.
func (h *ArticlesHandler) Update(c *fiber.Ctx) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg, nil)
	}

	id, _ := auth.IdentityFromContext(c)
	article, err := h.articles.Update(c.UserContext(), articleID, id.UserID, id.Role, toArticleInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, article)
}

// Delete handles DELETE /article/:id.
func (h *ArticlesHandler) Delete(c *fiber.Ctx) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	if err := h.articles.Delete(c.UserContext(), articleID, id.UserID, id.Role); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// Detail handles GET /article/detail/:id (owner or admin, any state).
func (h *ArticlesHandler) Detail(c *fiber.Ctx) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	article, err := h.articles.Detail(c.UserContext(), articleID, id.UserID, id.Role)
	if err != nil {
		return err
	}
	return response.Success(c, article)
}

// PublicDetail handles GET /article/public/:id. Anonymous viewers
// are fine; identified ones also get their like/collect flags.
func (h *ArticlesHandler) PublicDetail(c *fiber.Ctx) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	var viewerID int64
	if id, ok := auth.IdentityFromContext(c); ok {
		viewerID = id.UserID
	}
	detail, err := h.articles.PublicDetail(c.UserContext(), articleID, viewerID)
	if err != nil {
		return err
	}
	return response.Success(c, detail)
}

// List handles GET /article/list (caller's own articles).
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	id, _ := auth.IdentityFromContext(c)
	page, pageSize := pageParams(c)
	list, total, err := h.articles.ListByAuthor(c.UserContext(), id.UserID, page, pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: total, Page: page, PageSize: pageSize, List: list})
}

// Home handles GET /article/home, the public feed of published articles.
func (h *ArticlesHandler) Home(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid category_id", nil)
		}
		categoryID = &v
	}

	list, total, err := h.articles.Home(c.UserContext(), categoryID, page, pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: total, Page: page, PageSize: pageSize, List: list})
}

// ToggleLike handles POST /article/like/:id.
func (h *ArticlesHandler) ToggleLike(c *fiber.Ctx) error {
	return h.toggle(c, domain.KindArticleLike)
}

// ToggleCollect handles POST /article/collect/:id.
func (h *ArticlesHandler) ToggleCollect(c *fiber.Ctx) error {
	return h.toggle(c, domain.KindArticleCollect)
}

func (h *ArticlesHandler) toggle(c *fiber.Ctx, kind domain.ToggleKind) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)

	var result *domain.ToggleResult
	switch kind {
	case domain.KindArticleLike:
		result, err = h.interactions.ToggleArticleLike(c.UserContext(), id.UserID, articleID)
	case domain.KindArticleCollect:
		result, err = h.interactions.ToggleArticleCollect(c.UserContext(), id.UserID, articleID)
	default:
		return apperrors.NewInternalError(nil)
	}
	if err != nil {
		return err
	}
	return response.Success(c, dto.ToggleResponse{Active: result.Active, Count: result.Count})
}

func toArticleInput(r dto.ArticleRequest) service.ArticleInput {
	return service.ArticleInput{
		Title:      r.Title,
		Content:    r.Content,
		CoverImg:   r.CoverImg,
		State:      domain.ArticleState(r.State),
		CategoryID: r.CategoryID,
	}
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}
