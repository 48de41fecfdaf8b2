package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	"github.com/spec-kit/blog-service/pkg/response"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	comments     *service.CommentService
	interactions *service.InteractionService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService, interactions *service.InteractionService) *CommentsHandler {
	return &CommentsHandler{comments: comments, interactions: interactions}
}

// Add handles POST /comment.
func (h *CommentsHandler) Add(c *fiber.Ctx) error {
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ArticleID <= 0 || strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("article_id and content required", nil)
	}

	id, _ := auth.IdentityFromContext(c)
	comment, err := h.comments.Add(c.UserContext(), id.UserID, req.ArticleID, req.ParentID, req.Content)
	if err != nil {
		return err
	}
	return response.Success(c, comment)
}

// Delete handles DELETE /comment/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	commentID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	if err := h.comments.Delete(c.UserContext(), commentID, id.UserID, id.Role); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// ListByArticle handles GET /comment/article/:id.
func (h *CommentsHandler) ListByArticle(c *fiber.Ctx) error {
	articleID, err := pathID(c)
	if err != nil {
		return err
	}
	page, pageSize := pageParams(c)
	list, total, err := h.comments.ListByArticle(c.UserContext(), articleID, page, pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: total, Page: page, PageSize: pageSize, List: list})
}

// ToggleLike handles POST /comment/like/:id.
func (h *CommentsHandler) ToggleLike(c *fiber.Ctx) error {
	commentID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	result, err := h.interactions.ToggleCommentLike(c.UserContext(), id.UserID, commentID)
	if err != nil {
		return err
	}
	return response.Success(c, dto.ToggleResponse{Active: result.Active, Count: result.Count})
}
