package service

import (
	"context"
	"testing"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminRoleActor = permission.Actor{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin}

func TestUserList_AdminOnly(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	users.On("List", ctx, "ali", 1, 10).Return([]models.User{{Username: "alice"}}, int64(1), nil)

	list, _, err := svc.List(ctx, &adminRoleActor, "ali", 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	superuser := &permission.Actor{UserID: "u-root", Role: models.RoleUser, IsSuperuser: true}
	_, _, err = svc.List(ctx, superuser, "ali", 1, 10)
	assert.NoError(t, err)

	_, _, err = svc.List(ctx, moderator, "", 1, 10)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, _, err = svc.List(ctx, nil, "", 1, 10)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Create(ctx, &adminRoleActor, dto.CreateUserRequest{Username: "carol", Email: "carol@example.com"})

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Nil(t, user.ConfirmationCode)
}

func TestUserCreate_Rejects(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)

	_, err := svc.Create(ctx, &adminRoleActor, dto.CreateUserRequest{Username: "Me", Email: "me@example.com"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, &adminRoleActor, dto.CreateUserRequest{Username: "carol", Email: "c@example.com", Role: "owner"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	users.On("Create", ctx, mock.Anything).Return(apperror.Conflict("user", "user already exists")).Once()
	_, err = svc.Create(ctx, &adminRoleActor, dto.CreateUserRequest{Username: "carol", Email: "c@example.com"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserUpdate_AdminChangesRole(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	target := &models.User{ID: "u-alice", Username: "alice", Role: models.RoleUser}
	users.On("FindByUsername", ctx, "alice").Return(target, nil)
	users.On("Update", ctx, target).Return(nil)

	role := models.RoleModerator
	user, err := svc.Update(ctx, &adminRoleActor, "alice", dto.UpdateUserRequest{Role: &role, Bio: ptr("hi")})

	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
	assert.Equal(t, "hi", user.Bio)
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	users.On("FindByUsername", ctx, "alice").Return(&models.User{ID: "u-alice", Username: "alice"}, nil)
	users.On("Delete", ctx, "u-alice").Return(nil)

	require.NoError(t, svc.Delete(ctx, &adminRoleActor, "alice"))
	users.AssertExpectations(t)
}

func TestGetMe(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	users.On("FindByID", ctx, "u-alice").Return(&models.User{ID: "u-alice", Username: "alice"}, nil)

	me, err := svc.GetMe(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = svc.GetMe(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestUpdateMe_RoleIsReadOnly(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewUserService(users, nil)
	self := &models.User{ID: "u-alice", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	users.On("FindByID", ctx, "u-alice").Return(self, nil)
	users.On("Update", ctx, self).Return(nil)

	user, err := svc.UpdateMe(ctx, alice, dto.UpdateMeRequest{FirstName: ptr("Alice"), Bio: ptr("reader")})

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "reader", user.Bio)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "alice", user.Username)
}
