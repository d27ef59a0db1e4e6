package handler

import (
	"context"
	"net/http"
	"testing"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) one(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, actor *permission.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(actor, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Get(ctx context.Context, actor *permission.Actor, username string) (*models.User, error) {
	return m.one(m.Called(actor, username))
}

func (m *MockUserService) Create(ctx context.Context, actor *permission.Actor, req dto.CreateUserRequest) (*models.User, error) {
	return m.one(m.Called(actor, req))
}

func (m *MockUserService) Update(ctx context.Context, actor *permission.Actor, username string, req dto.UpdateUserRequest) (*models.User, error) {
	return m.one(m.Called(actor, username, req))
}

func (m *MockUserService) Delete(ctx context.Context, actor *permission.Actor, username string) error {
	return m.Called(actor, username).Error(0)
}

func (m *MockUserService) GetMe(ctx context.Context, actor *permission.Actor) (*models.User, error) {
	return m.one(m.Called(actor))
}

func (m *MockUserService) UpdateMe(ctx context.Context, actor *permission.Actor, req dto.UpdateMeRequest) (*models.User, error) {
	return m.one(m.Called(actor, req))
}

func newUserRouter(svc *MockUserService, actor *permission.Actor) *gin.Engine {
	router := setupRouter()
	NewUserHandler(svc).RegisterRoutes(router.Group("/api/v1", withActor(actor)))
	return router
}

func TestUsersMe_RoutesToSelf(t *testing.T) {
	svc := new(MockUserService)
	router := newUserRouter(svc, testUser)
	svc.On("GetMe", testUser).Return(&models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/users/me/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "user", body["role"])
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUsersMe_PatchIgnoresRole(t *testing.T) {
	svc := new(MockUserService)
	router := newUserRouter(svc, testUser)
	bio := "reader"
	svc.On("UpdateMe", testUser, dto.UpdateMeRequest{Bio: &bio}).
		Return(&models.User{Username: "alice", Bio: "reader", Role: models.RoleUser}, nil)

	w := doJSON(router, http.MethodPatch, "/api/v1/users/me/", map[string]any{"bio": "reader", "role": "admin"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", decode(t, w)["role"])
	svc.AssertExpectations(t)
}

func TestUsersAdminRoutes(t *testing.T) {
	svc := new(MockUserService)
	router := newUserRouter(svc, testUser)
	svc.On("Get", testUser, "bob").Return(nil, apperror.Forbidden("you do not have permission to perform this action"))
	svc.On("List", testUser, "", 1, DefaultPageSize).Return([]models.User(nil), int64(0), apperror.Forbidden("denied"))

	w := doJSON(router, http.MethodGet, "/api/v1/users/bob/", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/users/", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsersCreate_RejectsMe(t *testing.T) {
	svc := new(MockUserService)
	router := newUserRouter(svc, testAdmin)

	w := doJSON(router, http.MethodPost, "/api/v1/users/", map[string]any{"username": "me", "email": "me@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username", decode(t, w)["field"])
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUsersCreate_AnonymousIs401BeforeValidation(t *testing.T) {
	svc := new(MockUserService)
	router := newUserRouter(svc, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/users/", map[string]any{"username": "me", "email": "me@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/v1/users/me/", map[string]any{"bio": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, svc.Calls)
}
