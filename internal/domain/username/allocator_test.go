package username

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
	"github.com/bnobela/globetalk-api/internal/domain/user"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

// countingPool records TryClaim calls around a fixed sample
type countingPool struct {
	sample     []string
	claimCalls int
}

func (p *countingPool) UnassignedSample(_ context.Context, n int) ([]string, error) {
	if len(p.sample) > n {
		return p.sample[:n], nil
	}
	return p.sample, nil
}

func (p *countingPool) TryClaim(_ context.Context, name, userID string) error {
	p.claimCalls++
	return shared.ErrAlreadyAssigned(name)
}

func (p *countingPool) Add(_ context.Context, names []string) (int, error) { return 0, nil }
func (p *countingPool) Get(_ context.Context, name string) (*Unit, error)  { return nil, nil }

func TestAllocator_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("should claim a username and write it into the profile", func(t *testing.T) {
		pool, users, _ := newTestPool(t)
		_, err := pool.Add(ctx, []string{"wanderer", "nomad", "drifter"})
		require.NoError(t, err)

		allocator := NewAllocator(pool, logger.NewNop(), 0, 0)

		name, err := allocator.Assign(ctx, "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, name)

		unit, err := pool.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "u1", unit.AssignedTo)

		profile, err := users.GetProfile(ctx, user.UserID("u1"))
		require.NoError(t, err)
		assert.Equal(t, name, profile.Username())
	})

	t.Run("empty pool fails with pool exhausted and no claim attempt", func(t *testing.T) {
		pool := &countingPool{sample: nil}
		allocator := NewAllocator(pool, logger.NewNop(), 0, 0)

		_, err := allocator.Assign(ctx, "u1")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodePoolExhausted))
		assert.Zero(t, pool.claimCalls)
	})

	t.Run("persistent conflicts exhaust the retry ceiling", func(t *testing.T) {
		pool := &countingPool{sample: []string{"contested"}}
		allocator := NewAllocator(pool, logger.NewNop(), 10, 5)

		_, err := allocator.Assign(ctx, "u1")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodeAllocationFailed))
		assert.Equal(t, 5, pool.claimCalls)
	})

	t.Run("fully assigned pool fails with pool exhausted", func(t *testing.T) {
		pool, _, _ := newTestPool(t)
		_, err := pool.Add(ctx, []string{"wanderer"})
		require.NoError(t, err)
		require.NoError(t, pool.TryClaim(ctx, "wanderer", "u1"))

		allocator := NewAllocator(pool, logger.NewNop(), 0, 0)
		_, err = allocator.Assign(ctx, "u2")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodePoolExhausted))
	})
}

func TestAllocator_NoDoubleAssignment(t *testing.T) {
	ctx := context.Background()
	pool, users, client := newTestPool(t)

	const units = 5
	const claimants = 20

	names := make([]string, units)
	for i := range names {
		names[i] = fmt.Sprintf("name-%d", i)
	}
	added, err := pool.Add(ctx, names)
	require.NoError(t, err)
	require.Equal(t, units, added)

	allocator := NewAllocator(pool, logger.NewNop(), 3, 10)

	type result struct {
		userID string
		name   string
		err    error
	}

	results := make([]result, claimants)
	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("user-%d", i)
			name, err := allocator.Assign(ctx, uid)
			results[i] = result{userID: uid, name: name, err: err}
		}(i)
	}
	wg.Wait()

	assigned := map[string]string{} // unit name -> winning user
	successes := 0
	for _, r := range results {
		if r.err != nil {
			// Losers fail with exhaustion or contention, nothing else
			ok := shared.HasCode(r.err, shared.ErrCodePoolExhausted) ||
				shared.HasCode(r.err, shared.ErrCodeAllocationFailed)
			assert.True(t, ok, "unexpected error: %v", r.err)
			continue
		}
		successes++
		_, taken := assigned[r.name]
		assert.False(t, taken, "unit %s claimed twice", r.name)
		assigned[r.name] = r.userID
	}

	assert.LessOrEqual(t, successes, units)
	assert.Greater(t, successes, 0)

	// Every assigned unit's stored state matches exactly one winner, and the
	// winner's profile carries that unit as username
	for name, uid := range assigned {
		unit, err := pool.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uid, unit.AssignedTo)

		profile, err := users.GetProfile(ctx, user.UserID(uid))
		require.NoError(t, err)
		assert.Equal(t, name, profile.Username())
	}

	// No unassigned-index entry survives for an assigned unit
	left, err := client.SMembers(ctx, unassignedSetKey).Result()
	require.NoError(t, err)
	for _, name := range left {
		unit, err := pool.Get(ctx, name)
		require.NoError(t, err)
		assert.False(t, unit.Assigned())
	}

	// An assigned unit always has a reported winner
	var unitDoc Unit
	for _, name := range names {
		data, err := client.Get(ctx, "username:"+name).Bytes()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &unitDoc))
		if unitDoc.Assigned() {
			assert.Equal(t, assigned[name], unitDoc.AssignedTo)
		}
	}
}
