package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CategoryService coordinates category workflows.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService builds the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create stores a category owned by the caller.
func (s *CategoryService) Create(ctx context.Context, ownerID int64, name, alias string) (*domain.Category, error) {
	category := &domain.Category{Name: name, Alias: alias, OwnerID: ownerID}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update renames a category owned by the caller; admins may edit any.
func (s *CategoryService) Update(ctx context.Context, id, callerID int64, role domain.Role, name, alias string) (*domain.Category, error) {
	category, err := s.getOwned(ctx, id, callerID, role)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.Alias = alias
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category owned by the caller; admins may delete any.
func (s *CategoryService) Delete(ctx context.Context, id, callerID int64, role domain.Role) error {
	if _, err := s.getOwned(ctx, id, callerID, role); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

// List returns all categories. Works for anonymous callers.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) getOwned(ctx context.Context, id, callerID int64, role domain.Role) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", nil)
		}
		return nil, err
	}
	if category.OwnerID != callerID && role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenAction("not the category owner")
	}
	return category, nil
}
