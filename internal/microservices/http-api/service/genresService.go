package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	Create(ctx context.Context, actor *permission.Actor, name, slug string) (*models.Genre, error)
	Delete(ctx context.Context, actor *permission.Actor, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *genreService) Create(ctx context.Context, actor *permission.Actor, name, slug string) (*models.Genre, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindGenre, nil); err != nil {
		return nil, err
	}
	name, err := catalogName(name)
	if err != nil {
		return nil, err
	}
	if err := validation.Slug(slug); err != nil {
		return nil, err
	}

	g := &models.Genre{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, g); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Validation("slug", "genre with this slug already exists")
		}
		return nil, err
	}
	return g, nil
}

func (s *genreService) Delete(ctx context.Context, actor *permission.Actor, slug string) error {
	if err := permission.Check(actor, http.MethodDelete, permission.KindGenre, nil); err != nil {
		return err
	}
	return s.repo.Delete(ctx, slug)
}

// catalogName trims and bounds the display name shared by categories and genres.
func catalogName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("name", "name is required")
	}
	if len(name) > validation.MaxNameLength {
		return "", apperror.Validation("name", fmt.Sprintf("name must be at most %d characters", validation.MaxNameLength))
	}
	return name, nil
}
