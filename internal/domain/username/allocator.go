package username

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

const (
	// DefaultBatchSize bounds the candidate batch queried per attempt
	DefaultBatchSize = 10
	// DefaultMaxAttempts bounds the retry loop under contention
	DefaultMaxAttempts = 5
)

// Allocator claims one unassigned unit from the pool and binds it to a
// requesting principal, exactly once. Each attempt is a two-phase read: an
// optimistic candidate sample, then an in-transaction verification of the
// chosen unit. Conflicts trigger a retry with a fresh sample; the retry
// count is the only liveness guard.
type Allocator struct {
	pool        Repository
	logger      *logger.Logger
	batchSize   int
	maxAttempts int
}

// NewAllocator creates an allocator. Zero batchSize/maxAttempts fall back to
// the defaults.
func NewAllocator(pool Repository, log *logger.Logger, batchSize, maxAttempts int) *Allocator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{
		pool:        pool,
		logger:      log.WithComponent("username-allocator"),
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// Assign claims a username for the principal and returns it. An empty pool
// fails immediately with a pool-exhausted error, no transaction attempted;
// exhausting the retry ceiling under contention fails with an
// allocation-failed error.
func (a *Allocator) Assign(ctx context.Context, userID string) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		batch, err := a.pool.UnassignedSample(ctx, a.batchSize)
		if err != nil {
			return "", err
		}
		if len(batch) == 0 {
			return "", shared.ErrPoolExhausted()
		}

		// Uniform pick over the visible batch spreads concurrent claimants
		// across candidates instead of serializing them onto the first one
		name := batch[rand.IntN(len(batch))]

		err = a.pool.TryClaim(ctx, name, userID)
		if err == nil {
			a.logger.Info("Username assigned",
				zap.String("username", name),
				zap.String("user_id", userID),
				zap.Int("attempt", attempt),
			)
			return name, nil
		}

		if !IsConflict(err) {
			return "", err
		}

		a.logger.Debug("Username claim conflict, retrying",
			zap.String("username", name),
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
		)
	}

	return "", shared.ErrAllocationFailed(a.maxAttempts)
}
