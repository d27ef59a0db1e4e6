package models

import "time"

// Title is a catalogued work. Its rating is never stored; see service.RatingService.
type Title struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:256;not null;index"`
	Year         int       `json:"year" gorm:"not null;index"`
	Description  string    `json:"description" gorm:"type:text"`
	CategorySlug *string   `json:"category_slug,omitempty" gorm:"size:50;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategorySlug;references:Slug;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:genre_titles;joinForeignKey:TitleID;joinReferences:GenreSlug"`
}

func (Title) TableName() string {
	return "titles"
}

// RatedTitle is a title with its rating computed from the review set; Rating is nil when
// the title has no reviews.
type RatedTitle struct {
	Title
	Rating *float64
}
