package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/user-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/user-service/models"
	"github.com/Khizarkk7/storefront-backend/services/user-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/user-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockUserService struct {
	listFn   func(ctx context.Context, caller middleware.Identity, f models.ListFilter, p pagination.Params) ([]models.User, int64, *services.ServiceError)
	getFn    func(ctx context.Context, caller middleware.Identity, id string) (*models.User, *services.ServiceError)
	createFn func(ctx context.Context, caller middleware.Identity, req *models.CreateUserRequest) (*models.User, *services.ServiceError)
	deleteFn func(ctx context.Context, caller middleware.Identity, id string) *services.ServiceError
}

func (m *mockUserService) ListUsers(ctx context.Context, caller middleware.Identity, f models.ListFilter, p pagination.Params) ([]models.User, int64, *services.ServiceError) {
	return m.listFn(ctx, caller, f, p)
}
func (m *mockUserService) GetUser(ctx context.Context, caller middleware.Identity, id string) (*models.User, *services.ServiceError) {
	return m.getFn(ctx, caller, id)
}
func (m *mockUserService) CreateUser(ctx context.Context, caller middleware.Identity, req *models.CreateUserRequest) (*models.User, *services.ServiceError) {
	return m.createFn(ctx, caller, req)
}
func (m *mockUserService) UpdateUser(context.Context, middleware.Identity, string, *models.UpdateUserRequest) (*models.User, *services.ServiceError) {
	return nil, &services.ServiceError{StatusCode: 501, Message: "not used"}
}
func (m *mockUserService) DeleteUser(ctx context.Context, caller middleware.Identity, id string) *services.ServiceError {
	return m.deleteFn(ctx, caller, id)
}
func (m *mockUserService) GetProfile(_ context.Context, userID string) (*models.User, *services.ServiceError) {
	return &models.User{ID: uuid.MustParse(userID), Username: "me"}, nil
}
func (m *mockUserService) UpdateProfile(context.Context, string, *models.UpdateProfileRequest) (*models.User, *services.ServiceError) {
	return nil, nil
}
func (m *mockUserService) ChangePassword(context.Context, string, *models.ChangePasswordRequest) *services.ServiceError {
	return nil
}

func setupRouter(svc services.UserService) *gin.Engine {
	r := gin.New()
	routes.RegisterUserRoutes(r, controllers.NewUserController(svc))
	return r
}

func do(r *gin.Engine, method, path, role, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(middleware.HeaderUserID, "3f0e2f62-9a8e-4b1e-8d0c-1d2f3a4b5c6d")
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListUsers_PaginationMeta(t *testing.T) {
	var gotParams pagination.Params
	svc := &mockUserService{
		listFn: func(_ context.Context, _ middleware.Identity, f models.ListFilter, p pagination.Params) ([]models.User, int64, *services.ServiceError) {
			gotParams = p
			assert.Equal(t, "amna", f.Search)
			return []models.User{{Username: "amna"}}, 25, nil
		},
	}

	w := do(setupRouter(svc), http.MethodGet, "/users?page=2&limit=10&search=amna", "system_admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 10}, gotParams)

	var body struct {
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasMore)
}

func TestListUsers_CustomerForbidden(t *testing.T) {
	w := do(setupRouter(&mockUserService{}), http.MethodGet, "/users", "customer", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListUsers_Unauthenticated(t *testing.T) {
	w := do(setupRouter(&mockUserService{}), http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUser_Conflict(t *testing.T) {
	svc := &mockUserService{
		createFn: func(context.Context, middleware.Identity, *models.CreateUserRequest) (*models.User, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 409, Message: "a user with this email already exists"}
		},
	}
	w := do(setupRouter(svc), http.MethodPost, "/users", "system_admin",
		`{"username":"x","email":"x@example.com","password":"Tr0ub4dor&Horse","role":"customer"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUser_InvalidBody(t *testing.T) {
	w := do(setupRouter(&mockUserService{}), http.MethodPost, "/users", "system_admin", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRoute_AnyAuthenticatedRole(t *testing.T) {
	w := do(setupRouter(&mockUserService{}), http.MethodGet, "/users/profile", "customer", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"me"`)
}

func TestDeleteUser_PassesCaller(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(_ context.Context, caller middleware.Identity, id string) *services.ServiceError {
			assert.Equal(t, "system_admin", caller.Role)
			assert.Equal(t, "target", id)
			return nil
		},
	}
	w := do(setupRouter(svc), http.MethodDelete, "/users/target", "systemAdmin", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
