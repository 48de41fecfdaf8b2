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

// CategoriesHandler exposes category endpoints.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

func parseCategoryRequest(c *fiber.Ctx) (dto.CategoryRequest, error) {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Alias) == "" {
		return req, apperrors.NewValidationError("name and alias required", nil)
	}
	return req, nil
}

// Create handles POST /category.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	req, err := parseCategoryRequest(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	category, err := h.categories.Create(c.UserContext(), id.UserID, req.Name, req.Alias)
	if err != nil {
		return err
	}
	return response.Success(c, category)
}

// Update handles PUT /category/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	categoryID, err := pathID(c)
	if err != nil {
		return err
	}
	req, err := parseCategoryRequest(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	category, err := h.categories.Update(c.UserContext(), categoryID, id.UserID, id.Role, req.Name, req.Alias)
	if err != nil {
		return err
	}
	return response.Success(c, category)
}

// Delete handles DELETE /category/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	categoryID, err := pathID(c)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFromContext(c)
	if err := h.categories.Delete(c.UserContext(), categoryID, id.UserID, id.Role); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// List handles GET /category/list. Auth optional.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	list, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, list)
}
