package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/tokengate/middleware"
	"github.com/upb/tokengate/models"
	"github.com/upb/tokengate/services"
	"github.com/upb/tokengate/utils"
	"go.uber.org/zap"
)

// UserService is the subset of services.UserService the handlers need
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error)
}

// UpdateRoleRequest is the body of PATCH /api/v1/users/{id}/role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user viewer"`
}

// ListUsersResponse is the body of GET /api/v1/users
type ListUsersResponse struct {
	Users  []*models.User `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserHandler serves the user endpoints
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleGetCurrentUser handles GET /api/v1/users/me
func (h *UserHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		HandleServiceError(w, services.ErrUnauthenticated, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleListUsers handles GET /api/v1/users?limit=&offset=
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, ListUsersResponse{
		Users:  users,
		Limit:  limit,
		Offset: offset,
	})
}

// HandleGetUser handles GET /api/v1/users/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleUpdateRole handles PATCH /api/v1/users/{id}/role
func (h *UserHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), id, models.UserRole(req.Role))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if actor := middleware.UserFromContext(r.Context()); actor != nil {
		h.logger.Info("role changed",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("actor_id", actor.ID.String()),
			zap.String("user_id", id.String()),
			zap.String("role", req.Role))
	}
	_ = utils.WriteOK(w, user)
}

// queryInt parses an optional integer query parameter; absent means 0
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{name: name + " must be an integer"},
		}
	}
	return n, nil
}
