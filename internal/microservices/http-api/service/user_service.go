package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type UserService interface {
	List(ctx context.Context, actor *permission.Actor, search string, page, pageSize int) ([]models.User, int64, error)
	Get(ctx context.Context, actor *permission.Actor, username string) (*models.User, error)
	Create(ctx context.Context, actor *permission.Actor, req dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor *permission.Actor, username string, req dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor *permission.Actor, username string) error

	GetMe(ctx context.Context, actor *permission.Actor) (*models.User, error)
	UpdateMe(ctx context.Context, actor *permission.Actor, req dto.UpdateMeRequest) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) List(ctx context.Context, actor *permission.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	if err := permission.Check(actor, http.MethodGet, permission.KindUser, nil); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *userService) Get(ctx context.Context, actor *permission.Actor, username string) (*models.User, error) {
	if err := permission.Check(actor, http.MethodGet, permission.KindUser, nil); err != nil {
		return nil, err
	}
	return s.userRepo.FindByUsername(ctx, username)
}

func (s *userService) Create(ctx context.Context, actor *permission.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindUser, nil); err != nil {
		return nil, err
	}
	if err := validation.Username(req.Username); err != nil {
		return nil, err
	}
	if err := validation.Email(req.Email); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if err := validation.Role(role); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, uniqueUserError(err)
	}
	s.logger.InfoContext(ctx, "user_created", "user_id", user.ID, "by", actor.UserID)
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor *permission.Actor, username string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := permission.Check(actor, http.MethodPatch, permission.KindUser, nil); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := validation.Username(*req.Username); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if err := validation.Email(*req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		if err := validation.Role(*req.Role); err != nil {
			return nil, err
		}
		user.Role = *req.Role
	}
	applyProfile(user, req.FirstName, req.LastName, req.Bio)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, uniqueUserError(err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *permission.Actor, username string) error {
	if err := permission.Check(actor, http.MethodDelete, permission.KindUser, nil); err != nil {
		return err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user_deleted", "user_id", user.ID, "by", actor.UserID)
	return nil
}

func (s *userService) GetMe(ctx context.Context, actor *permission.Actor) (*models.User, error) {
	if err := permission.Check(actor, http.MethodGet, permission.KindMe, nil); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, actor.UserID)
}

// UpdateMe edits the caller's own profile fields. Role, username and email never change
// here.
func (s *userService) UpdateMe(ctx context.Context, actor *permission.Actor, req dto.UpdateMeRequest) (*models.User, error) {
	if err := permission.Check(actor, http.MethodPatch, permission.KindMe, nil); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(actor, http.MethodPatch, permission.KindMe, user); err != nil {
		return nil, err
	}

	applyProfile(user, req.FirstName, req.LastName, req.Bio)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func applyProfile(user *models.User, firstName, lastName, bio *string) {
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if bio != nil {
		user.Bio = *bio
	}
}

func uniqueUserError(err error) error {
	if errors.Is(err, apperror.ErrConflict) {
		return apperror.Validation("username", "a user with this username or email already exists")
	}
	return err
}
