package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api/handlers"
	"github.com/bnobela/globetalk-api/internal/api/middleware"
	"github.com/bnobela/globetalk-api/internal/domain/auth"
	"github.com/bnobela/globetalk-api/internal/domain/user"
	"github.com/bnobela/globetalk-api/internal/domain/username"
	"github.com/bnobela/globetalk-api/internal/events"
	"github.com/bnobela/globetalk-api/pkg/logger"
	"github.com/bnobela/globetalk-api/pkg/redisx"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	logger         *logger.Logger
	redisClient    *redisx.Client
	mux            *http.ServeMux
	profileHandler *handlers.ProfileHandler
	userHandler    *handlers.UserHandler
	serverHandler  *handlers.ServerHandler
	authMiddleware *middleware.AuthMiddleware
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	PoolBatchSize   int           `json:"pool_batch_size"`
	PoolMaxAttempts int           `json:"pool_max_attempts"`
}

// NewServer creates a new HTTP server
func NewServer(
	config ServerConfig,
	logger *logger.Logger,
	redisClient *redisx.Client,
	verifier auth.TokenVerifier,
	publisher *events.Publisher,
) *Server {
	mux := http.NewServeMux()
	apiLogger := logger.WithComponent("api")

	userRepo := user.NewRedisRepository(redisClient.Client)
	poolRepo := username.NewRedisRepository(redisClient.Client)
	allocator := username.NewAllocator(poolRepo, logger, config.PoolBatchSize, config.PoolMaxAttempts)

	authMiddleware := middleware.NewAuthMiddleware(verifier, apiLogger)

	server := &Server{
		logger:         apiLogger,
		redisClient:    redisClient,
		mux:            mux,
		profileHandler: handlers.NewProfileHandler(logger, userRepo, allocator, publisher),
		userHandler:    handlers.NewUserHandler(logger, userRepo, publisher),
		serverHandler:  handlers.NewServerHandler(logger, redisClient),
		authMiddleware: authMiddleware,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	server.setupMiddleware()

	return server
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	requireAuth := s.authMiddleware.RequireAuth

	s.mux.HandleFunc("GET /health", s.serverHandler.HandleHealth)
	s.mux.HandleFunc("GET /swagger/", httpSwagger.WrapHandler)

	s.mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(s.profileHandler.HandleGet)))
	s.mux.Handle("POST /api/profile", requireAuth(http.HandlerFunc(s.profileHandler.HandleSave)))
	s.mux.Handle("PATCH /api/profile", requireAuth(http.HandlerFunc(s.profileHandler.HandleUpdate)))
	s.mux.Handle("GET /api/profile/{userId}", requireAuth(http.HandlerFunc(s.profileHandler.HandleGetByID)))

	s.mux.Handle("GET /api/users/{uid}/exists", requireAuth(http.HandlerFunc(s.userHandler.HandleExists)))
	s.mux.Handle("POST /api/users", requireAuth(http.HandlerFunc(s.userHandler.HandleCreate)))
}

// setupMiddleware wires the middleware chain around the mux
func (s *Server) setupMiddleware() {
	middlewareChain := middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.CORS(),
		middleware.Logging(s.logger),
	)

	s.httpServer.Handler = middlewareChain(s.mux)
}

// Handler returns the composed HTTP handler, for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}
