package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows GET /titles/. Zero values are ignored.
type TitleFilter struct {
	GenreSlug    string
	CategorySlug string
	Name         string // case-insensitive substring
	Year         int
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) filtered(ctx context.Context, f TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.GenreSlug != "" {
		q = q.Where("EXISTS (SELECT 1 FROM genre_titles gt WHERE gt.title_id = titles.id AND gt.genre_slug = ?)", f.GenreSlug)
	}
	if f.CategorySlug != "" {
		q = q.Where("titles.category_slug = ?", f.CategorySlug)
	}
	if f.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	return q
}

func (r *TitleRepo) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := r.filtered(ctx, f).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Genres").First(&t, id).Error; err != nil {
		return nil, mapError(err, "title", id)
	}
	return &t, nil
}

func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the title and its genre_titles rows in one transaction. Genres must
// already exist; they are linked, never upserted.
func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	genres := t.Genres
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		if len(genres) > 0 {
			if err := tx.Model(t).Omit("Genres.*").Association("Genres").Append(genres); err != nil {
				return fmt.Errorf("link genres: %w", err)
			}
		}
		return nil
	})
}

// Update saves the scalar columns and, when replaceGenres is set, swaps the genre set
// for t.Genres.
func (r *TitleRepo) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	genres := t.Genres
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).
			Select("name", "year", "description", "category_slug").
			Updates(map[string]any{
				"name":          t.Name,
				"year":          t.Year,
				"description":   t.Description,
				"category_slug": t.CategorySlug,
			}).Error; err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if !replaceGenres {
			return nil
		}
		assoc := tx.Model(t).Omit("Genres.*").Association("Genres")
		if len(genres) == 0 {
			if err := assoc.Clear(); err != nil {
				return fmt.Errorf("clear genres: %w", err)
			}
			return nil
		}
		if err := assoc.Replace(genres); err != nil {
			return fmt.Errorf("replace genres: %w", err)
		}
		return nil
	})
}

// Delete removes the title; genre_titles, reviews and their comments cascade.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "title", id)
	}
	return nil
}
