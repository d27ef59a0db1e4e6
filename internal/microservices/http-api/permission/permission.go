// Package permission is the single authorization predicate consumed by every handler
// and service. Role admin, the staff flag and the superuser flag are equivalent: each one
// alone grants admin rights.
package permission

import (
	"net/http"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
)

// Actor is the caller of a request. A nil *Actor is anonymous.
type Actor struct {
	UserID      string
	Username    string
	Role        models.Role
	IsStaff     bool
	IsSuperuser bool
}

// FromUser builds the actor for an authenticated user record.
func FromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Kind names the resource collection a request targets.
type Kind int

const (
	KindCategory Kind = iota
	KindGenre
	KindTitle
	KindReview
	KindComment
	KindUser // account management by admins
	KindMe   // self-service profile
)

// Owned is implemented by resources with an author.
type Owned interface {
	AuthorUserID() string
}

// Authenticated reports whether a is a signed-in user. It is safe to call on a nil
// (anonymous) actor.
func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID != ""
}

// IsAdmin reports whether a has admin rights, granted by the admin role, the staff flag
// or the superuser flag. Any one of them is enough.
func (a *Actor) IsAdmin() bool {
	return a.Authenticated() && (a.Role == models.RoleAdmin || a.IsStaff || a.IsSuperuser)
}

// IsModerator reports whether a may moderate reviews and comments written by others.
// Every admin is also a moderator.
func (a *Actor) IsModerator() bool {
	return a.Authenticated() && (a.Role == models.RoleModerator || a.IsAdmin())
}

// IsSafe reports whether method is read-only.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Allow decides whether actor may perform method on a resource of kind. obj is the
// targeted instance for object-level checks and may be nil for collection requests.
// For KindMe, obj is the profile being touched and must belong to the actor.
func Allow(actor *Actor, method string, kind Kind, obj Owned) bool {
	switch kind {
	case KindUser:
		return actor.IsAdmin() && isSupported(method)
	case KindMe:
		if !actor.Authenticated() {
			return false
		}
		if method != http.MethodGet && method != http.MethodHead && method != http.MethodPatch {
			return false
		}
		return obj == nil || obj.AuthorUserID() == actor.UserID
	}

	if IsSafe(method) {
		return true
	}
	if !actor.Authenticated() || !isSupported(method) {
		return false
	}

	switch kind {
	case KindCategory, KindGenre, KindTitle:
		return actor.IsAdmin()
	case KindReview, KindComment:
		if method == http.MethodPost {
			return true
		}
		if actor.IsModerator() {
			return true
		}
		// collection-level pass, the instance check follows once obj is loaded
		return obj == nil || obj.AuthorUserID() == actor.UserID
	}
	return false
}

// Check is Allow returning the error the API answers with: authentication required for
// anonymous callers, permission denied for everyone else.
func Check(actor *Actor, method string, kind Kind, obj Owned) error {
	if Allow(actor, method, kind, obj) {
		return nil
	}
	if !actor.Authenticated() {
		return apperror.Unauthenticated()
	}
	return apperror.Forbidden("you do not have permission to perform this action")
}

// PUT is not part of the API surface.
func isSupported(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
