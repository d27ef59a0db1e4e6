package handler

import (
	"context"
	"net/http"
	"testing"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTitleService mocks the TitleService interface
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.RatedTitle, int64, error) {
	args := m.Called(f, page, pageSize)
	return args.Get(0).([]models.RatedTitle), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*models.RatedTitle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatedTitle), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, actor *permission.Actor, in service.TitleInput) (*models.RatedTitle, error) {
	args := m.Called(actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatedTitle), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, actor *permission.Actor, id int64, patch service.TitlePatch) (*models.RatedTitle, error) {
	args := m.Called(actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatedTitle), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, actor *permission.Actor, id int64) error {
	args := m.Called(actor, id)
	return args.Error(0)
}

var testAdmin = &permission.Actor{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin}

// withActor stands in for the bearer-token middleware.
func withActor(actor *permission.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor != nil {
			middleware.SetActor(c, actor)
		}
		c.Next()
	}
}

func newTitleRouter(svc service.TitleService, actor *permission.Actor) *gin.Engine {
	router := setupRouter()
	api := router.Group("/api/v1", withActor(actor))
	NewTitleHandler(svc).RegisterRoutes(api)
	return router
}

func TestTitleList_EnvelopeAndNullRating(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, nil)
	rating := 8.5
	svc.On("List", repository.TitleFilter{GenreSlug: "drama", Year: 1979}, 1, 2).Return([]models.RatedTitle{
		{Title: models.Title{ID: 1, Name: "Stalker", Year: 1979}, Rating: &rating},
		{Title: models.Title{ID: 2, Name: "Mirror", Year: 1979}},
	}, int64(3), nil)

	w := doJSON(router, http.MethodGet, "/api/v1/titles/?genre=drama&year=1979&page_size=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])
	assert.Nil(t, body["previous"])
	assert.Contains(t, body["next"], "page=2")
	results := body["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, 8.5, results[0].(map[string]any)["rating"])
	second := results[1].(map[string]any)
	assert.Contains(t, second, "rating")
	assert.Nil(t, second["rating"])
}

func TestTitleList_BadYear(t *testing.T) {
	router := newTitleRouter(new(MockTitleService), nil)

	w := doJSON(router, http.MethodGet, "/api/v1/titles/?year=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitleGet_NotFound(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, nil)
	svc.On("Get", int64(99)).Return(nil, apperror.NotFound("title", 99))

	w := doJSON(router, http.MethodGet, "/api/v1/titles/99/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/titles/abc/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTitleCreate(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, testAdmin)
	movie := "movie"
	in := service.TitleInput{Name: "Stalker", Year: 1979, Genres: []string{"drama"}, Category: &movie}
	svc.On("Create", testAdmin, in).Return(&models.RatedTitle{Title: models.Title{
		ID: 1, Name: "Stalker", Year: 1979,
		Category: &models.Category{Slug: "movie", Name: "Movie"},
		Genres:   []models.Genre{{Slug: "drama", Name: "Drama"}},
	}}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/titles/", map[string]any{
		"name": "Stalker", "year": 1979, "genre": []string{"drama"}, "category": "movie",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"name": "Movie", "slug": "movie"}, body["category"])
	assert.Equal(t, []any{map[string]any{"name": "Drama", "slug": "drama"}}, body["genre"])
	assert.Nil(t, body["rating"])
}

func TestTitleCreate_AnonymousIs401(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/titles/", map[string]any{"name": "x", "year": 2000})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication_required", decode(t, w)["error"])
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleWrites_PermissionBeforeBody(t *testing.T) {
	tests := []struct {
		name   string
		actor  *permission.Actor
		method string
		path   string
		body   any
		status int
	}{
		{"anonymous create with empty body", nil, http.MethodPost, "/api/v1/titles/", map[string]any{}, http.StatusUnauthorized},
		{"anonymous create with broken json", nil, http.MethodPost, "/api/v1/titles/", "{", http.StatusUnauthorized},
		{"user create with missing name", testUser, http.MethodPost, "/api/v1/titles/", map[string]any{"year": 2000}, http.StatusForbidden},
		{"user patch with wrong type", testUser, http.MethodPatch, "/api/v1/titles/1/", map[string]any{"year": "soon"}, http.StatusForbidden},
		{"user delete", testUser, http.MethodDelete, "/api/v1/titles/1/", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTitleService)
			router := newTitleRouter(svc, tt.actor)

			w := doJSON(router, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, svc.Calls)
		})
	}
}

func TestTitleUpdate_NullCategoryClears(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, testAdmin)
	empty := ""
	svc.On("Update", testAdmin, int64(1), service.TitlePatch{Category: &empty}).
		Return(&models.RatedTitle{Title: models.Title{ID: 1, Name: "Stalker", Year: 1979}}, nil)

	w := doJSON(router, http.MethodPatch, "/api/v1/titles/1/", `{"category": null}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["category"])
	svc.AssertExpectations(t)
}

func TestTitleDelete(t *testing.T) {
	svc := new(MockTitleService)
	router := newTitleRouter(svc, testAdmin)
	svc.On("Delete", testAdmin, int64(1)).Return(nil)

	w := doJSON(router, http.MethodDelete, "/api/v1/titles/1/", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
