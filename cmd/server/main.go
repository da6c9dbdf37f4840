package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api"
	"github.com/bnobela/globetalk-api/internal/domain/auth"
	"github.com/bnobela/globetalk-api/internal/events"
	"github.com/bnobela/globetalk-api/pkg/config"
	"github.com/bnobela/globetalk-api/pkg/redisx"
)

func main() {
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting GlobeTalk Auth API",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Server.Environment),
	)

	redisClient, err := redisx.NewClient(cfg.Redis.URL, log)
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	var publisher *events.Publisher
	if cfg.Events.Enabled {
		streamPub, err := events.NewRedisStreamPublisher(redisClient.Client)
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer streamPub.Close()
		publisher = events.NewPublisher(streamPub, cfg.Events.TopicPrefix, log)
	}

	serverConfig := api.ServerConfig{
		Port:            cfg.Server.Port,
		Host:            cfg.Server.Host,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		PoolBatchSize:   cfg.Pool.BatchSize,
		PoolMaxAttempts: cfg.Pool.MaxAttempts,
	}

	apiServer := api.NewServer(serverConfig, log, redisClient, verifier, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
