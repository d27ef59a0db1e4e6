package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const readTimeout = 5 * time.Second

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup {
	titles := router.Group("/titles")
	{
		titles.GET("/", h.List)
		titles.POST("/", permit(permission.KindTitle), h.Create)
		titles.GET("/:title_id/", h.Get)
		titles.PATCH("/:title_id/", permit(permission.KindTitle), h.Update)
		titles.DELETE("/:title_id/", permit(permission.KindTitle), h.Delete)
	}
	return titles
}

// List GET /api/v1/titles/?genre=&category=&name=&year=
func (h *TitleHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	filter := repository.TitleFilter{
		GenreSlug:    c.Query("genre"),
		CategorySlug: c.Query("category"),
		Name:         c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, apperror.Validation("year", "year must be an integer"))
			return
		}
		filter.Year = year
	}

	titles, total, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]dto.TitleResponse, len(titles))
	for i, t := range titles {
		out[i] = dto.TitleFromModel(t)
	}
	respondPage(c, out, total, page, pageSize)
}

// Get GET /api/v1/titles/:title_id/
func (h *TitleHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	id, err := idParam(c, "title_id", "title")
	if err != nil {
		RespondError(c, err)
		return
	}
	t, err := h.svc.Get(ctx, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*t))
}

// Create POST /api/v1/titles/
func (h *TitleHandler) Create(c *gin.Context) {
	var in dto.CreateTitleDTO
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), service.TitleInput{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		Genres:      in.Genre,
		Category:    in.Category,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TitleFromModel(*t))
}

// Update PATCH /api/v1/titles/:title_id/
// "category": null or "" clears the category, "genre": [] clears the genres.
func (h *TitleHandler) Update(c *gin.Context) {
	id, err := idParam(c, "title_id", "title")
	if err != nil {
		RespondError(c, err)
		return
	}
	var in dto.UpdateTitleDTO
	if !bindJSON(c, &in) {
		return
	}
	patch := service.TitlePatch{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		Genres:      in.Genre,
		Category:    in.Category,
	}
	if in.CategoryNull {
		empty := ""
		patch.Category = &empty
	}

	t, err := h.svc.Update(c.Request.Context(), middleware.Actor(c), id, patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*t))
}

// Delete DELETE /api/v1/titles/:title_id/
func (h *TitleHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "title_id", "title")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
