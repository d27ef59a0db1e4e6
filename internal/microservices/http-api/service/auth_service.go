package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/google/uuid"
)

const (
	confirmationSubject = "Your confirmation code"
	deliveryTimeout     = 30 * time.Second
	codeAttempts        = 3
)

type AuthService interface {
	// Signup registers (username, email) or, when that exact pair already exists,
	// rotates and resends its confirmation code.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// ObtainToken exchanges a confirmation code for a bearer token.
	ObtainToken(ctx context.Context, username, code string) (string, error)
	// Authenticate resolves a bearer token to the current state of its user.
	Authenticate(ctx context.Context, tokenString string) (*permission.Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	mail     mailer.Mailer
	logger   *slog.Logger
	// dispatch runs delivery work off the request path with a context of its own
	dispatch func(func(ctx context.Context))
}

// AuthOption customises NewAuthService.
type AuthOption func(*authService)

// WithDispatcher routes confirmation delivery through dispatch, typically
// (*mailer.Queue).Dispatch. The context handed to the job bounds the send.
func WithDispatcher(dispatch func(func(ctx context.Context))) AuthOption {
	return func(s *authService) {
		if dispatch != nil {
			s.dispatch = dispatch
		}
	}
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenService, mail mailer.Mailer, logger *slog.Logger, opts ...AuthOption) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		logger:   logger,
		dispatch: func(fn func(context.Context)) { go fn(context.Background()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewConfirmationCode returns a random 32-char hex code.
func NewConfirmationCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	existing, err := s.userRepo.FindByUsernameAndEmail(ctx, username, email)
	switch {
	case err == nil:
		if err := s.rotateCode(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "confirmation_code_reissued", "user_id", existing.ID)
		return existing, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, err
	}

	code := NewConfirmationCode()
	user := &models.User{
		Username:         username,
		Email:            email,
		Role:             models.RoleUser,
		ConfirmationCode: &code,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// lost a race with a concurrent signup for the same name or address
			return nil, apperror.Validation("username", "a user with this username or email already exists")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user_signed_up", "user_id", user.ID, "username", user.Username)
	s.deliver(user, code)
	return user, nil
}

// ensureFree rejects a username or email already held by a different account.
func (s *authService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return apperror.Validation("username", "a user with this username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return apperror.Validation("email", "a user with this email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) rotateCode(ctx context.Context, user *models.User) error {
	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := NewConfirmationCode()
		err = s.userRepo.SetConfirmationCode(ctx, user.ID, code)
		if err == nil {
			user.ConfirmationCode = &code
			s.deliver(user, code)
			return nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("issue confirmation code: %w", err)
}

// deliver mails the code without blocking the request. Failure is logged only: the user
// row is already committed and signup can simply be called again.
func (s *authService) deliver(user *models.User, code string) {
	to, userID := user.Email, user.ID
	body := fmt.Sprintf("Confirmation code for %q: %s", user.Username, code)
	s.dispatch(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()
		if err := s.mail.Send(ctx, to, confirmationSubject, body); err != nil {
			s.logger.Error("confirmation_delivery_failed", "user_id", userID, "error", err)
		}
	})
}

func (s *authService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user.ConfirmationCode == nil || subtle.ConstantTimeCompare([]byte(*user.ConfirmationCode), []byte(code)) != 1 {
		return "", apperror.BadRequest("invalid confirmation code")
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "token_issued", "user_id", user.ID)
	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*permission.Actor, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, &apperror.AppError{Err: apperror.ErrUnauthenticated, Message: err.Error()}
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrUnauthenticated, Message: "user no longer exists"}
		}
		return nil, err
	}
	return permission.FromUser(user), nil
}
