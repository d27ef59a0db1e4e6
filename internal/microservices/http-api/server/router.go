// Package server assembles the gin engine for the HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// Pinger reports storage liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Category *handler.CategoryHandler
	Genre    *handler.GenreHandler
	Title    *handler.TitleHandler
	Review   *handler.ReviewHandler
	Comment  *handler.CommentHandler
}

type Options struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	SignupLimiter *middleware.IPRateLimiter
	CORSOrigins   []string
	DB            Pinger
}

// NewRouter wires middleware and routes. PUT on any API route answers 405.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "method_not_allowed",
			"message": "method " + c.Request.Method + " not allowed",
		})
	})
	r.NoRoute(func(c *gin.Context) {
		handler.RespondError(c, &apperror.AppError{Err: apperror.ErrNotFound, Message: "not found"})
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.GET("/healthz", healthz(opts.DB))

	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(opts.Authenticator, handler.RespondError))

	var authExtra []gin.HandlerFunc
	if opts.SignupLimiter != nil {
		authExtra = append(authExtra, middleware.RateLimit(opts.SignupLimiter))
	}
	h.Auth.RegisterRoutes(api, authExtra...)
	h.Users.RegisterRoutes(api)
	h.Category.RegisterRoutes(api)
	h.Genre.RegisterRoutes(api)
	titles := h.Title.RegisterRoutes(api)
	h.Review.RegisterRoutes(titles)
	h.Comment.RegisterRoutes(titles)

	return r
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
