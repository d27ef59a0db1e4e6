// Package validation holds the field rules shared by request binding and services.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	ReservedUsername  = "me"
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxSlugLength     = 50
	MaxNameLength     = 256
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Username checks emptiness, length, pattern and the reserved "me".
func Username(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return apperror.Validation("username", "username is required")
	case len(username) > MaxUsernameLength:
		return apperror.Validation("username", fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	case isReserved(username):
		return apperror.Validation("username", `username "me" is reserved`)
	case !usernamePattern.MatchString(username):
		return apperror.Validation("username", "username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}

func isReserved(username string) bool {
	return strings.EqualFold(username, ReservedUsername)
}

func Email(email string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return apperror.Validation("email", "email is required")
	case len(email) > MaxEmailLength:
		return apperror.Validation("email", fmt.Sprintf("email must be at most %d characters", MaxEmailLength))
	}
	return nil
}

func Slug(slug string) error {
	if slug == "" || len(slug) > MaxSlugLength || !slugPattern.MatchString(slug) {
		return apperror.Validation("slug", "slug must be 1-50 characters of letters, digits, - or _")
	}
	return nil
}

// Score enforces the inclusive [1,10] bound.
func Score(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return apperror.Validation("score", fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))
	}
	return nil
}

// Year rejects non-positive years and years after the current one in the local calendar.
func Year(year int, now time.Time) error {
	if year <= 0 {
		return apperror.Validation("year", "year must be positive")
	}
	if year > now.Year() {
		return apperror.Validation("year", fmt.Sprintf("year cannot be later than %d", now.Year()))
	}
	return nil
}

func Role(role models.Role) error {
	if !role.Valid() {
		return apperror.Validation("role", "role must be one of user, moderator, admin")
	}
	return nil
}

// RegisterBindings installs the "username", "notme" and "slug" tags on gin's validator
// and makes it report fields by their json names. "username" checks the character set
// only; pair it with "notme" to refuse the reserved name.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("notme", func(fl validator.FieldLevel) bool {
		return !isReserved(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return Slug(fl.Field().String()) == nil
	})
}
