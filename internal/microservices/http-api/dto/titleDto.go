package dto

import (
	"bytes"
	"encoding/json"

	"yamdb/internal/microservices/http-api/models"
)

// CreateTitleDTO used for POST /titles/. Genres and category are referenced by slug.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// UpdateTitleDTO used for PATCH /titles/:title_id/ (partial updates)
type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category"`

	// CategoryNull is set when the body carries "category": null
	CategoryNull bool `json:"-"`
}

func (d *UpdateTitleDTO) UnmarshalJSON(data []byte) error {
	type plain UpdateTitleDTO
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["category"]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		p.CategoryNull = true
	}
	*d = UpdateTitleDTO(p)
	return nil
}

// TitleResponse expands genres and category. Rating has no omitempty: a title without
// reviews renders "rating": null.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func TitleFromModel(t models.RatedTitle) TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, GenreFromModel(g))
	}
	var category *CategoryResponse
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		category = &c
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    category,
	}
}
