package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/domain/username"
	"github.com/bnobela/globetalk-api/pkg/logger"
	"github.com/bnobela/globetalk-api/pkg/redisx"
)

// poolseed loads usernames into the pool as unassigned units. Names come
// from args, or one per line on stdin when no args are given. Names that
// already exist in the pool (assigned or not) are skipped.
func main() {
	redisURL := flag.String("redis", "", "Redis URL (defaults to REDIS_URL env, then redis://localhost:6379/0)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall operation timeout")
	flag.Parse()

	url := *redisURL
	if url == "" {
		url = os.Getenv("REDIS_URL")
	}
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	log := logger.NewDefault()
	defer func() {
		_ = log.Sync()
	}()

	names := flag.Args()
	if len(names) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			name := strings.TrimSpace(scanner.Text())
			if name != "" {
				names = append(names, name)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read names from stdin: %v\n", err)
			os.Exit(1)
		}
	}

	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "No usernames given (pass as args or one per line on stdin)")
		os.Exit(1)
	}

	client, err := redisx.NewClient(url, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool := username.NewRedisRepository(client.Client)
	added, err := pool.Add(ctx, names)
	if err != nil {
		log.Fatal("Failed to seed username pool", zap.Int("added", added), zap.Error(err))
	}

	log.Info("Username pool seeded",
		zap.Int("given", len(names)),
		zap.Int("added", added),
		zap.Int("skipped", len(names)-added),
	)
}
