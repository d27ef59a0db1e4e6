package middleware

import (
	"context"
	"strings"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/permission"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to an actor; service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*permission.Actor, error)
}

// ErrorRenderer writes err as the API error envelope and aborts.
type ErrorRenderer func(c *gin.Context, err error)

// Authenticate is a Gin middleware for optional bearer authentication.
// No Authorization header leaves the request anonymous; a malformed header or an
// invalid token is rejected with 401.
func Authenticate(auth Authenticator, renderError ErrorRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			renderError(c, &apperror.AppError{Err: apperror.ErrUnauthenticated, Message: "invalid authorization header format"})
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			renderError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Set("userID", actor.UserID)
		c.Next()
	}
}

// Actor returns the authenticated caller, or nil for anonymous requests.
func Actor(c *gin.Context) *permission.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*permission.Actor)
	return actor
}

// SetActor is used by tests to inject a caller without a token.
func SetActor(c *gin.Context, actor *permission.Actor) {
	c.Set(actorKey, actor)
	if actor != nil {
		c.Set("userID", actor.UserID)
	}
}
