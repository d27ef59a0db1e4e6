package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

// TitleInput is a full title payload; genres and category are slugs.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Genres      []string
	Category    *string
}

// TitlePatch carries only the fields present in a PATCH body. Category set to "" clears
// the category; Genres set to an empty slice clears the genres.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Genres      *[]string
	Category    *string
}

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.RatedTitle, int64, error)
	Get(ctx context.Context, id int64) (*models.RatedTitle, error)
	Create(ctx context.Context, actor *permission.Actor, in TitleInput) (*models.RatedTitle, error)
	Update(ctx context.Context, actor *permission.Actor, id int64, patch TitlePatch) (*models.RatedTitle, error)
	Delete(ctx context.Context, actor *permission.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	genreRepo    repository.GenreRepository
	categoryRepo repository.CategoryRepository
	ratings      RatingService
	logger       *slog.Logger
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	genreRepo repository.GenreRepository,
	categoryRepo repository.CategoryRepository,
	ratings RatingService,
	logger *slog.Logger,
) TitleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &titleService{
		titleRepo:    titleRepo,
		genreRepo:    genreRepo,
		categoryRepo: categoryRepo,
		ratings:      ratings,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.RatedTitle, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}
	ratings, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.RatedTitle, len(titles))
	for i, t := range titles {
		out[i] = models.RatedTitle{Title: t, Rating: ratings[t.ID]}
	}
	return out, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.RatedTitle, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.rate(ctx, t)
}

func (s *titleService) rate(ctx context.Context, t *models.Title) (*models.RatedTitle, error) {
	rating, err := s.ratings.Rating(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &models.RatedTitle{Title: *t, Rating: rating}, nil
}

func (s *titleService) Create(ctx context.Context, actor *permission.Actor, in TitleInput) (*models.RatedTitle, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindTitle, nil); err != nil {
		return nil, err
	}
	name, err := titleName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validation.Year(in.Year, s.now()); err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        name,
		Year:        in.Year,
		Description: in.Description,
		Genres:      genres,
		Category:    category,
	}
	if category != nil {
		t.CategorySlug = &category.Slug
	}
	if err := s.titleRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "title_created", "title_id", t.ID, "user_id", actor.UserID)
	// a new title has no reviews yet
	return &models.RatedTitle{Title: *t}, nil
}

func (s *titleService) Update(ctx context.Context, actor *permission.Actor, id int64, patch TitlePatch) (*models.RatedTitle, error) {
	if err := permission.Check(actor, http.MethodPatch, permission.KindTitle, nil); err != nil {
		return nil, err
	}
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := titleName(*patch.Name)
		if err != nil {
			return nil, err
		}
		t.Name = name
	}
	if patch.Year != nil {
		if err := validation.Year(*patch.Year, s.now()); err != nil {
			return nil, err
		}
		t.Year = *patch.Year
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		category, err := s.resolveCategory(ctx, patch.Category)
		if err != nil {
			return nil, err
		}
		t.Category = category
		t.CategorySlug = nil
		if category != nil {
			t.CategorySlug = &category.Slug
		}
	}
	if patch.Genres != nil {
		genres, err := s.resolveGenres(ctx, *patch.Genres)
		if err != nil {
			return nil, err
		}
		t.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, t, patch.Genres != nil); err != nil {
		return nil, err
	}
	return s.rate(ctx, t)
}

func (s *titleService) Delete(ctx context.Context, actor *permission.Actor, id int64) error {
	if err := permission.Check(actor, http.MethodDelete, permission.KindTitle, nil); err != nil {
		return err
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, id)
	s.logger.InfoContext(ctx, "title_deleted", "title_id", id, "user_id", actor.UserID)
	return nil
}

// resolveGenres maps slugs to stored genres. Duplicates collapse; any unknown slug fails
// the whole request.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return []models.Genre{}, nil
	}
	seen := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) == len(unique) {
		return genres, nil
	}

	found := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		found[g.Slug] = struct{}{}
	}
	var unknown []string
	for _, slug := range unique {
		if _, ok := found[slug]; !ok {
			unknown = append(unknown, slug)
		}
	}
	sort.Strings(unknown)
	return nil, apperror.Validation("genre", fmt.Sprintf("unknown genre slug(s): %s", strings.Join(unknown, ", ")))
}

// resolveCategory returns nil for a nil or empty slug.
func (s *titleService) resolveCategory(ctx context.Context, slug *string) (*models.Category, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	c, err := s.categoryRepo.GetBySlug(ctx, *slug)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Validation("category", fmt.Sprintf("unknown category slug: %s", *slug))
		}
		return nil, err
	}
	return c, nil
}

func titleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("name", "name is required")
	}
	if len(name) > validation.MaxNameLength {
		return "", apperror.Validation("name", fmt.Sprintf("name must be at most %d characters", validation.MaxNameLength))
	}
	return name, nil
}
