package models

// Category is identified by its slug; a title has at most one.
type Category struct {
	Slug string `json:"slug" gorm:"primaryKey;size:50"`
	Name string `json:"name" gorm:"size:256;not null"`
}

func (Category) TableName() string {
	return "categories"
}
