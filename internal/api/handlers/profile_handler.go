package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api/httpx"
	"github.com/bnobela/globetalk-api/internal/api/middleware"
	"github.com/bnobela/globetalk-api/internal/domain/user"
	"github.com/bnobela/globetalk-api/internal/domain/username"
	"github.com/bnobela/globetalk-api/internal/events"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	logger    *logger.Logger
	users     user.Repository
	allocator *username.Allocator
	events    *events.Publisher
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	logger *logger.Logger,
	users user.Repository,
	allocator *username.Allocator,
	publisher *events.Publisher,
) *ProfileHandler {
	return &ProfileHandler{
		logger:    logger.WithComponent("profile-handler"),
		users:     users,
		allocator: allocator,
		events:    publisher,
	}
}

// HandleGet handles GET /api/profile, returning the caller's own profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Missing token")
		return
	}

	profile, err := h.users.GetProfile(r.Context(), user.UserID(uid))
	if err != nil {
		h.logger.Error("Failed to get profile", zap.String("user_id", uid), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if profile == nil {
		httpx.Error(w, http.StatusNotFound, "Profile not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

// HandleGetByID handles GET /api/profile/{userId}, any principal's profile
func (h *ProfileHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	profile, err := h.users.GetProfile(r.Context(), user.UserID(userID))
	if err != nil {
		h.logger.Error("Failed to get profile", zap.String("user_id", userID), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if profile == nil {
		httpx.Error(w, http.StatusNotFound, "Profile not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

// HandleSave handles POST /api/profile: merge-saves the body fields and
// claims a username from the pool when the saved profile has none yet
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var fields user.Profile
	if err := httpx.DecodeBody(r, &fields); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := user.UserID(uid)

	if err := h.users.SaveProfile(r.Context(), id, fields); err != nil {
		h.logger.Error("Failed to save profile", zap.String("user_id", uid), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	profile, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to read saved profile", zap.String("user_id", uid), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if profile == nil {
		profile = user.Profile{}
	}

	// Claim a username only when none is present yet; a concurrent save that
	// won the claim is visible here and is left untouched
	if profile.Username() == "" {
		name, err := h.allocator.Assign(r.Context(), uid)
		switch {
		case err == nil:
			profile["username"] = name

			h.events.PublishUsernameAssigned(r.Context(), events.UsernameAssigned{
				Username:   name,
				UserID:     uid,
				AssignedAt: time.Now().UTC(),
			})
		case errors.Is(err, username.ErrAlreadyHeld):
			// A concurrent save claimed a username between our read and the
			// claim transaction; surface the one that won
			current, err := h.users.GetProfile(r.Context(), id)
			if err != nil || current == nil {
				h.logger.Error("Failed to re-read profile after claim race",
					zap.String("user_id", uid), zap.Error(err))
				httpx.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			profile = current
		default:
			h.logger.Error("Failed to assign username", zap.String("user_id", uid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Profile saved",
		"profile": profile,
	})
}

// HandleUpdate handles PATCH /api/profile, a partial update of an existing
// profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var fields user.Profile
	if err := httpx.DecodeBody(r, &fields); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.users.UpdateProfile(r.Context(), user.UserID(uid), fields); err != nil {
		h.logger.Error("Failed to update profile", zap.String("user_id", uid), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}
