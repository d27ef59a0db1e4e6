package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	Create(ctx context.Context, actor *permission.Actor, name, slug string) (*models.Category, error)
	Delete(ctx context.Context, actor *permission.Actor, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(r repository.CategoryRepository) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *categoryService) Create(ctx context.Context, actor *permission.Actor, name, slug string) (*models.Category, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindCategory, nil); err != nil {
		return nil, err
	}
	name, err := catalogName(name)
	if err != nil {
		return nil, err
	}
	if err := validation.Slug(slug); err != nil {
		return nil, err
	}

	c := &models.Category{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Validation("slug", "category with this slug already exists")
		}
		return nil, err
	}
	return c, nil
}

// Delete removes the category; titles in it keep existing with no category.
func (s *categoryService) Delete(ctx context.Context, actor *permission.Actor, slug string) error {
	if err := permission.Check(actor, http.MethodDelete, permission.KindCategory, nil); err != nil {
		return err
	}
	return s.repo.Delete(ctx, slug)
}
