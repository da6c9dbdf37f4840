package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api/httpx"
	"github.com/bnobela/globetalk-api/internal/domain/shared"
	"github.com/bnobela/globetalk-api/internal/domain/user"
	"github.com/bnobela/globetalk-api/internal/events"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

// UserHandler handles registry endpoints
type UserHandler struct {
	logger *logger.Logger
	users  user.Repository
	events *events.Publisher
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *logger.Logger, users user.Repository, publisher *events.Publisher) *UserHandler {
	return &UserHandler{
		logger: logger.WithComponent("user-handler"),
		users:  users,
		events: publisher,
	}
}

// HandleExists handles GET /api/users/{uid}/exists
func (h *UserHandler) HandleExists(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	exists, err := h.users.Exists(r.Context(), user.UserID(uid))
	if err != nil {
		h.logger.Error("Failed to check user existence", zap.String("uid", uid), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// HandleCreate handles POST /api/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req user.NewUser
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	created, err := h.users.Create(r.Context(), req)
	if err != nil {
		if shared.HasCode(err, shared.ErrCodeInvalidInput) {
			httpx.Error(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		h.logger.Error("Failed to create user", zap.String("uid", req.ID.String()), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.events.PublishUserCreated(r.Context(), events.UserCreated{
		UserID: req.ID.String(),
		Email:  req.Email,
	})

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"user": created})
}
