package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/tokengate/middleware"
	"github.com/upb/tokengate/models"
	"github.com/upb/tokengate/services"
	"go.uber.org/zap"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// serveWithParam routes the request through chi so URLParam resolves
func serveWithParam(h http.HandlerFunc, method, pattern, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type userEnvelope struct {
	Data struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"data"`
}

func TestHandleGetCurrentUser(t *testing.T) {
	handler := NewUserHandler(new(MockUserService), zap.NewNop())

	t.Run("returns the authenticated user", func(t *testing.T) {
		user := models.NewUser("member@example.com", models.RoleUser)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), user))
		w := httptest.NewRecorder()

		handler.HandleGetCurrentUser(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body userEnvelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, user.ID.String(), body.Data.ID)
		assert.Equal(t, "member@example.com", body.Data.Email)
		assert.Equal(t, "user", body.Data.Role)
	})

	t.Run("returns 401 without a user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		w := httptest.NewRecorder()

		handler.HandleGetCurrentUser(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleListUsers(t *testing.T) {
	t.Run("passes paging through", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		users := []*models.User{models.NewUser("a@example.com", models.RoleAdmin)}
		svc.On("ListUsers", mock.Anything, 10, 20).Return(users, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?limit=10&offset=20", nil)
		w := httptest.NewRecorder()
		handler.HandleListUsers(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data ListUsersResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Len(t, body.Data.Users, 1)
		assert.Equal(t, 10, body.Data.Limit)
		svc.AssertExpectations(t)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?limit=ten", nil)
		w := httptest.NewRecorder()
		handler.HandleListUsers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service validation error is 400", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		svc.On("ListUsers", mock.Anything, 0, -1).
			Return(nil, services.NewDomainError(services.ErrorTypeValidation, "offset must not be negative", nil))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?offset=-1", nil)
		w := httptest.NewRecorder()
		handler.HandleListUsers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		user := models.NewUser("a@example.com", models.RoleViewer)
		svc.On("GetUser", mock.Anything, user.ID).Return(user, nil)

		w := serveWithParam(handler.HandleGetUser, http.MethodGet, "/users/{id}", "/users/"+user.ID.String(), "")

		require.Equal(t, http.StatusOK, w.Code)
		var body userEnvelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "viewer", body.Data.Role)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		id := uuid.New()
		svc.On("GetUser", mock.Anything, id).Return(nil, services.ErrUserNotFound)

		w := serveWithParam(handler.HandleGetUser, http.MethodGet, "/users/{id}", "/users/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())

		w := serveWithParam(handler.HandleGetUser, http.MethodGet, "/users/{id}", "/users/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		id := uuid.New()
		svc.On("GetUser", mock.Anything, id).Return(nil, services.WrapInternal("failed to get user", errors.New("timeout")))

		w := serveWithParam(handler.HandleGetUser, http.MethodGet, "/users/{id}", "/users/"+id.String(), "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "timeout")
	})
}

func TestHandleUpdateRole(t *testing.T) {
	const pattern = "/users/{id}/role"

	t.Run("updates role", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		user := models.NewUser("a@example.com", models.RoleAdmin)
		svc.On("UpdateRole", mock.Anything, user.ID, models.RoleAdmin).Return(user, nil)

		w := serveWithParam(handler.HandleUpdateRole, http.MethodPatch, pattern,
			"/users/"+user.ID.String()+"/role", `{"role":"admin"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body userEnvelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "admin", body.Data.Role)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown role", `{"role":"root"}`},
		{"missing role", `{}`},
		{"malformed body", `{"role":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			handler := NewUserHandler(svc, zap.NewNop())

			w := serveWithParam(handler.HandleUpdateRole, http.MethodPatch, pattern,
				"/users/"+uuid.New().String()+"/role", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("missing user", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, zap.NewNop())
		id := uuid.New()
		svc.On("UpdateRole", mock.Anything, id, models.RoleViewer).Return(nil, services.ErrUserNotFound)

		w := serveWithParam(handler.HandleUpdateRole, http.MethodPatch, pattern,
			"/users/"+id.String()+"/role", `{"role":"viewer"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
