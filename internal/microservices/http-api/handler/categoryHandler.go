package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: s}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories", permit(permission.KindCategory))
	{
		categories.GET("/", h.List)
		categories.POST("/", h.Create)
		categories.DELETE("/:slug/", h.Delete)
	}
}

// List GET /api/v1/categories/?search=
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	categories, total, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]dto.CategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = dto.CategoryFromModel(cat)
	}
	respondPage(c, out, total, page, pageSize)
}

// Create POST /api/v1/categories/
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryDTO
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), req.Name, req.Slug)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(*cat))
}

// Delete DELETE /api/v1/categories/:slug/
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
