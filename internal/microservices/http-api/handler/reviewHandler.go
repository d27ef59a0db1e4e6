package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes under a /titles group.
func (h *ReviewHandler) RegisterRoutes(titles *gin.RouterGroup) {
	reviews := titles.Group("/:title_id/reviews", permit(permission.KindReview))
	{
		reviews.GET("/", h.List)
		reviews.POST("/", h.Create)
		reviews.GET("/:review_id/", h.Get)
		reviews.PATCH("/:review_id/", h.Update)
		reviews.DELETE("/:review_id/", h.Delete)
	}
}

func (h *ReviewHandler) ids(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, err := idParam(c, "title_id", "title")
	if err != nil {
		RespondError(c, err)
		return 0, 0, false
	}
	if c.Param("review_id") == "" {
		return titleID, 0, true
	}
	reviewID, err = idParam(c, "review_id", "review")
	if err != nil {
		RespondError(c, err)
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// List GET /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, _, ok := h.ids(c)
	if !ok {
		return
	}
	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), titleID, page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = dto.ReviewFromModel(r)
	}
	respondPage(c, out, total, page, pageSize)
}

// Create POST /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, _, ok := h.ids(c)
	if !ok {
		return
	}
	var req dto.CreateReviewDTO
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.CreateReview(c.Request.Context(), middleware.Actor(c), titleID, req.Text, *req.Score)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReviewFromModel(*review))
}

// Get GET /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	review, err := h.reviewService.GetReview(c.Request.Context(), titleID, reviewID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*review))
}

// Update PATCH /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	var req dto.UpdateReviewDTO
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.UpdateReview(c.Request.Context(), middleware.Actor(c), titleID, reviewID, req.Text, req.Score)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*review))
}

// Delete DELETE /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(c.Request.Context(), middleware.Actor(c), titleID, reviewID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
