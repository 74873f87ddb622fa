package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	permKeyPrefix = "rbac:perm:"
	genKeyPrefix  = "rbac:perm:gen:"
)

var errStaleGeneration = errors.New("rbac: permission cache generation changed")

// PermissionCache keeps resolved grants in Redis. Each user has a generation
// counter bumped on invalidation; a computation that started before an
// invalidation is never stored.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache builds the cache. A nil client disables caching.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PermissionCache{client: client, ttl: ttl}
}

// Generation returns the user's current generation.
func (c *PermissionCache) Generation(ctx context.Context, userID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Load returns cached grants. The boolean is false on a miss.
func (c *PermissionCache) Load(ctx context.Context, userID int64) (Grants, bool, error) {
	if c == nil || c.client == nil {
		return Grants{}, false, nil
	}
	raw, err := c.client.Get(ctx, permKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Grants{}, false, nil
	}
	if err != nil {
		return Grants{}, false, err
	}
	var grants Grants
	if err := json.Unmarshal(raw, &grants); err != nil {
		return Grants{}, false, err
	}
	return grants, true, nil
}

// Store saves grants computed at generation gen. It is a no-op when the user was
// invalidated in the meantime.
func (c *PermissionCache) Store(ctx context.Context, userID, gen int64, grants Grants) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(grants)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(userID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, permKey(userID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey(userID))
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateUsers drops cached grants and bumps the generation of every id.
func (c *PermissionCache) InvalidateUsers(ctx context.Context, ids []int64) error {
	if c == nil || c.client == nil || len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, permKey(id))
			pipe.Incr(ctx, genKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rbac: invalidate permission cache: %w", err)
	}
	return nil
}

// RolesChanged invalidates the members of the changed roles.
func (c *PermissionCache) RolesChanged(ctx context.Context, _ []string, members []int64) error {
	return c.InvalidateUsers(ctx, members)
}

// MembershipChanged invalidates users whose role memberships changed.
func (c *PermissionCache) MembershipChanged(ctx context.Context, userIDs []int64) error {
	return c.InvalidateUsers(ctx, userIDs)
}

func permKey(userID int64) string {
	return fmt.Sprintf("%s%d", permKeyPrefix, userID)
}

func genKey(userID int64) string {
	return fmt.Sprintf("%s%d", genKeyPrefix, userID)
}
