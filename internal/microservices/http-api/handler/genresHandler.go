package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	svc service.GenreService
}

func NewGenreHandler(s service.GenreService) *GenreHandler {
	return &GenreHandler{svc: s}
}

func (h *GenreHandler) RegisterRoutes(router *gin.RouterGroup) {
	genres := router.Group("/genres", permit(permission.KindGenre))
	{
		genres.GET("/", h.List)
		genres.POST("/", h.Create)
		genres.DELETE("/:slug/", h.Delete)
	}
}

// List GET /api/v1/genres/?search=
func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	genres, total, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]dto.GenreResponse, len(genres))
	for i, g := range genres {
		out[i] = dto.GenreFromModel(g)
	}
	respondPage(c, out, total, page, pageSize)
}

// Create POST /api/v1/genres/
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreDTO
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), req.Name, req.Slug)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.GenreFromModel(*g))
}

// Delete DELETE /api/v1/genres/:slug/
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
