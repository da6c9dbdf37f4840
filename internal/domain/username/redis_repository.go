package username

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
	"github.com/bnobela/globetalk-api/internal/domain/user"
)

// RedisRepository implements Repository using Redis WATCH transactions.
// A claim watches both the unit key and the claimant's user key, so any
// concurrent write to either aborts the transaction.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed pool repository
func NewRedisRepository(client *redis.Client) Repository {
	return &RedisRepository{
		client: client,
	}
}

// UnassignedSample returns up to n random unassigned unit names
func (r *RedisRepository) UnassignedSample(ctx context.Context, n int) ([]string, error) {
	names, err := r.client.SRandMemberN(ctx, unassignedSetKey, int64(n)).Result()
	if err != nil {
		return nil, shared.ErrStoreUnavailable(err)
	}
	return names, nil
}

// TryClaim binds the unit to the principal and sets the profile username,
// atomically. The sample that produced the name is only a candidate hint:
// the unit's state is re-read inside the transaction before the write.
func (r *RedisRepository) TryClaim(ctx context.Context, name string, userID string) error {
	uKey := unitKey(name)
	profileKey := user.Key(user.UserID(userID))

	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, uKey).Bytes()
		if err == redis.Nil {
			return shared.ErrNotFound("username")
		}
		if err != nil {
			return shared.ErrStoreUnavailable(err)
		}

		var unit Unit
		if err := json.Unmarshal(data, &unit); err != nil {
			return fmt.Errorf("failed to deserialize username unit: %w", err)
		}

		if unit.Assigned() {
			return shared.ErrAlreadyAssigned(name)
		}

		now := time.Now().UTC()
		unit.AssignedTo = userID
		unit.AssignedAt = &now

		unitJSON, err := json.Marshal(&unit)
		if err != nil {
			return fmt.Errorf("failed to serialize username unit: %w", err)
		}

		profile, err := tx.Get(ctx, profileKey).Bytes()
		if err == redis.Nil {
			profile = []byte("{}")
		} else if err != nil {
			return shared.ErrStoreUnavailable(err)
		}

		// A racing save for the same principal may have claimed a different
		// unit since the caller's pre-check. Watching the profile key catches
		// commits after this point; this re-read catches commits before it.
		var held struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(profile, &held); err == nil && held.Username != "" {
			return ErrAlreadyHeld
		}

		patch, err := json.Marshal(map[string]string{"username": name})
		if err != nil {
			return fmt.Errorf("failed to serialize username patch: %w", err)
		}

		merged, err := jsonpatch.MergePatch(profile, patch)
		if err != nil {
			return fmt.Errorf("failed to merge profile username: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, uKey, unitJSON, 0)
			pipe.Set(ctx, profileKey, merged, 0)
			pipe.SRem(ctx, unassignedSetKey, name)
			return nil
		})
		return err
	}, uKey, profileKey)
}

// Add registers new unassigned units, skipping names that already exist
func (r *RedisRepository) Add(ctx context.Context, names []string) (int, error) {
	added := 0

	for _, name := range names {
		uKey := unitKey(name)

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, uKey).Result()
			if err != nil {
				return shared.ErrStoreUnavailable(err)
			}
			if n > 0 {
				return shared.NewDomainErrorf(shared.ErrCodeAlreadyAssigned, "username %q already registered", name)
			}

			unitJSON, err := json.Marshal(&Unit{Name: name})
			if err != nil {
				return fmt.Errorf("failed to serialize username unit: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, uKey, unitJSON, 0)
				pipe.SAdd(ctx, unassignedSetKey, name)
				return nil
			})
			return err
		}, uKey)

		if err == nil {
			added++
			continue
		}
		if shared.HasCode(err, shared.ErrCodeAlreadyAssigned) || errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return added, err
	}

	return added, nil
}

// Get returns a unit by name, nil when absent
func (r *RedisRepository) Get(ctx context.Context, name string) (*Unit, error) {
	data, err := r.client.Get(ctx, unitKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, shared.ErrStoreUnavailable(err)
	}

	var unit Unit
	if err := json.Unmarshal(data, &unit); err != nil {
		return nil, fmt.Errorf("failed to deserialize username unit: %w", err)
	}

	return &unit, nil
}

// IsConflict reports whether a claim failed because a racing claimant won:
// either the in-transaction re-read saw the unit assigned, or the store
// aborted the transaction after a watched key changed
func IsConflict(err error) bool {
	return errors.Is(err, redis.TxFailedErr) ||
		shared.HasCode(err, shared.ErrCodeAlreadyAssigned) ||
		shared.HasCode(err, shared.ErrCodeNotFound)
}
