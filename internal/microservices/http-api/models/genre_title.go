package models

// explicit join model so both ends cascade
type GenreTitle struct {
	TitleID   int64  `json:"title_id" gorm:"primaryKey"`
	GenreSlug string `json:"genre_slug" gorm:"primaryKey;size:50"`

	Title Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Genre Genre `json:"-" gorm:"foreignKey:GenreSlug;references:Slug;constraint:OnDelete:CASCADE;"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
