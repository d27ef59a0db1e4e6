package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment routes under a /titles group.
func (h *CommentHandler) RegisterRoutes(titles *gin.RouterGroup) {
	comments := titles.Group("/:title_id/reviews/:review_id/comments", permit(permission.KindComment))
	{
		comments.GET("/", h.List)
		comments.POST("/", h.Create)
		comments.GET("/:comment_id/", h.Get)
		comments.PATCH("/:comment_id/", h.Update)
		comments.DELETE("/:comment_id/", h.Delete)
	}
}

type commentPath struct {
	titleID, reviewID, commentID int64
}

func (h *CommentHandler) path(c *gin.Context) (commentPath, bool) {
	var p commentPath
	var err error
	if p.titleID, err = idParam(c, "title_id", "title"); err != nil {
		RespondError(c, err)
		return p, false
	}
	if p.reviewID, err = idParam(c, "review_id", "review"); err != nil {
		RespondError(c, err)
		return p, false
	}
	if c.Param("comment_id") != "" {
		if p.commentID, err = idParam(c, "comment_id", "comment"); err != nil {
			RespondError(c, err)
			return p, false
		}
	}
	return p, true
}

// List GET /api/v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	p, ok := h.path(c)
	if !ok {
		return
	}
	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	comments, total, err := h.commentService.ListComments(c.Request.Context(), p.titleID, p.reviewID, page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]dto.CommentResponse, len(comments))
	for i, cm := range comments {
		out[i] = dto.CommentFromModel(cm)
	}
	respondPage(c, out, total, page, pageSize)
}

// Create POST /api/v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) Create(c *gin.Context) {
	p, ok := h.path(c)
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.Actor(c), p.titleID, p.reviewID, req.Text)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CommentFromModel(*comment))
}

// Get GET .../comments/:comment_id/
func (h *CommentHandler) Get(c *gin.Context) {
	p, ok := h.path(c)
	if !ok {
		return
	}
	comment, err := h.commentService.GetComment(c.Request.Context(), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*comment))
}

// Update PATCH .../comments/:comment_id/
func (h *CommentHandler) Update(c *gin.Context) {
	p, ok := h.path(c)
	if !ok {
		return
	}
	var req dto.UpdateCommentDTO
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.UpdateComment(c.Request.Context(), middleware.Actor(c), p.titleID, p.reviewID, p.commentID, req.Text)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*comment))
}

// Delete DELETE .../comments/:comment_id/
func (h *CommentHandler) Delete(c *gin.Context) {
	p, ok := h.path(c)
	if !ok {
		return
	}
	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.Actor(c), p.titleID, p.reviewID, p.commentID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
