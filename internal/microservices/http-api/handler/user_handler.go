package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers /users. The literal /me/ route wins over :username.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	admin := permit(permission.KindUser)
	self := permit(permission.KindMe)
	{
		users.GET("/", admin, h.List)
		users.POST("/", admin, h.Create)

		users.GET("/me/", self, h.GetMe)
		users.PATCH("/me/", self, h.UpdateMe)

		users.GET("/:username/", admin, h.Get)
		users.PATCH("/:username/", admin, h.Update)
		users.DELETE("/:username/", admin, h.Delete)
	}
}

// List GET /api/v1/users/?search=
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize, err := pagination(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	users, total, err := h.userService.List(c.Request.Context(), middleware.Actor(c), c.Query("search"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondPage(c, mapUsers(users), total, page, pageSize)
}

// Create POST /api/v1/users/
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.UserFromModel(*user))
}

// Get GET /api/v1/users/:username/
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.Actor(c), c.Param("username"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// Update PATCH /api/v1/users/:username/
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), middleware.Actor(c), c.Param("username"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// Delete DELETE /api/v1/users/:username/
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.Actor(c), c.Param("username")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMe GET /api/v1/users/me/
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// UpdateMe PATCH /api/v1/users/me/
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

func mapUsers(users []models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = dto.UserFromModel(u)
	}
	return out
}
