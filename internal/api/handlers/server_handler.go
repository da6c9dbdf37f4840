package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api/httpx"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

// HealthChecker reports store connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ServerHandler handles service-level endpoints
type ServerHandler struct {
	logger *logger.Logger
	store  HealthChecker
}

// NewServerHandler creates a new server handler
func NewServerHandler(logger *logger.Logger, store HealthChecker) *ServerHandler {
	return &ServerHandler{
		logger: logger.WithComponent("server-handler"),
		store:  store,
	}
}

// HandleHealth handles GET /health
func (h *ServerHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.HealthCheck(r.Context()); err != nil {
			h.logger.Error("Store health check failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "Auth API is live"})
}
