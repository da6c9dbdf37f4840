package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
)

// RedisRepository implements Repository on top of Redis string keys holding
// JSON documents, with WATCH transactions guarding every read-modify-write
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed user repository
func NewRedisRepository(client *redis.Client) Repository {
	return &RedisRepository{
		client: client,
	}
}

// writeRetries bounds optimistic retries of a document write under
// contention on the same key
const writeRetries = 100

// watchWrite runs fn as a WATCH transaction on key, retrying when a
// concurrent writer commits between WATCH and EXEC. Every attempt re-reads
// the current document and re-merges, so a retry never applies stale state.
func (r *RedisRepository) watchWrite(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	var err error
	for i := 0; i < writeRetries; i++ {
		err = r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return shared.ErrStoreUnavailable(err)
}

// Exists reports whether a document exists for the principal
func (r *RedisRepository) Exists(ctx context.Context, id UserID) (bool, error) {
	n, err := r.client.Exists(ctx, Key(id)).Result()
	if err != nil {
		return false, shared.ErrStoreUnavailable(err)
	}
	return n > 0, nil
}

// GetProfile retrieves the full document, nil when absent
func (r *RedisRepository) GetProfile(ctx context.Context, id UserID) (Profile, error) {
	data, err := r.client.Get(ctx, Key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, shared.ErrStoreUnavailable(err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to deserialize profile: %w", err)
	}

	return profile, nil
}

// SaveProfile merge-upserts the given fields into the principal's document
func (r *RedisRepository) SaveProfile(ctx context.Context, id UserID, fields Profile) error {
	key := Key(id)

	return r.watchWrite(ctx, key, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			current = []byte("{}")
		} else if err != nil {
			return shared.ErrStoreUnavailable(err)
		}

		merged, err := mergeDocument(current, fields)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		return err
	})
}

// UpdateProfile applies a partial update to an existing document
func (r *RedisRepository) UpdateProfile(ctx context.Context, id UserID, fields Profile) error {
	key := Key(id)

	return r.watchWrite(ctx, key, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return shared.ErrNotFound("profile")
		}
		if err != nil {
			return shared.ErrStoreUnavailable(err)
		}

		merged, err := mergeDocument(current, fields)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		return err
	})
}

// Create writes the registry fields and returns the stored document
func (r *RedisRepository) Create(ctx context.Context, u NewUser) (Profile, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	key := Key(u.ID)
	var stored Profile

	err := r.watchWrite(ctx, key, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			current = []byte("{}")
		} else if err != nil {
			return shared.ErrStoreUnavailable(err)
		}

		merged, err := mergeDocument(current, u.registryFields(time.Now()))
		if err != nil {
			return err
		}

		if err := json.Unmarshal(merged, &stored); err != nil {
			return fmt.Errorf("failed to deserialize user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		return err
	})

	if err != nil {
		return nil, err
	}

	return stored, nil
}

// mergeDocument applies fields to a stored JSON document as an RFC 7386
// merge patch: absent document treated as {}, unspecified fields untouched
func mergeDocument(current []byte, fields Profile) ([]byte, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize profile fields: %w", err)
	}

	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge profile fields: %w", err)
	}

	return merged, nil
}
