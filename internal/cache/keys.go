package cache

import (
	"context"
	"fmt"
	"time"
)

// Key patterns
const (
	ProfileKeyPrefix = "warbler:profile:%d"
)

// TTLs
const (
	ProfileTTL = 5 * time.Minute
)

// ProfileKey is the key of a user's public profile.
func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

// Invalidate deletes keys, ignoring errors.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}

// InvalidateUser drops every cached view of a user.
func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	c.Invalidate(ctx, ProfileKey(userID))
}
