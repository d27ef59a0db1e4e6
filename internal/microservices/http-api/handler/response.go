package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxPageSize = 100

// keeps page*pageSize well inside int on every platform
const maxPage = math.MaxInt32 / maxPageSize

// DefaultPageSize is used when a list request carries no page_size.
var DefaultPageSize = 10

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondError renders err as {error, message, field} with the status its kind maps to.
func RespondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	resp := errorResponse{Error: apperror.Kind(err), Message: err.Error()}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Field = appErr.Field
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request_failed", "path", c.Request.URL.Path, "error", err)
		resp.Message = "internal server error"
	}
	c.AbortWithStatusJSON(status, resp)
}

// permit runs the collection-level permission check for kind ahead of the handler, so an
// anonymous or under-privileged caller is refused before its body is read. Instance checks
// against the loaded object stay in the services.
func permit(kind permission.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.Check(middleware.Actor(c), c.Request.Method, kind, nil); err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}

// bindJSON decodes the body into req and turns binding failures into validation errors.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		RespondError(c, apperror.Validation(fe.Field(), fieldMessage(fe)))
	case errors.As(err, &typeErr):
		RespondError(c, apperror.Validation(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type)))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		RespondError(c, apperror.BadRequest("malformed JSON body"))
	default:
		RespondError(c, apperror.BadRequest(err.Error()))
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "enter a valid email address"
	case "username":
		return "username may contain only letters, digits and @/./+/-/_"
	case "notme":
		return `username "me" is reserved`
	case "slug":
		return "slug may contain only letters, digits, - and _"
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// pagination reads page and page_size, clamping page_size to [1, maxPageSize].
func pagination(c *gin.Context) (page, pageSize int, err error) {
	page, pageSize = 1, DefaultPageSize
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 || page > maxPage {
			return 0, 0, apperror.NotFound("page", raw)
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return 0, 0, apperror.Validation("page_size", "page_size must be a positive integer")
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}

// respondPage renders the list envelope. A page past the last one is not found; page 1
// is always valid, even for an empty collection.
func respondPage[T any](c *gin.Context, results []T, total int64, page, pageSize int) {
	if page > 1 && int64(page-1)*int64(pageSize) >= total {
		RespondError(c, apperror.NotFound("page", page))
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(results, total, page, pageSize, c.Request.URL))
}

// idParam parses a positive integer path parameter. Anything else is a missing resource.
func idParam(c *gin.Context, name, resource string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}
