package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// TTLs per entity kind. Likes and conversation lists churn quickly; matches
// and profiles are comparatively stable.
const (
	TTLLikes         = 60 * time.Second
	TTLConversations = 60 * time.Second
	TTLMatches       = 300 * time.Second
	TTLProfile       = 300 * time.Second
)

// Key scheme: {entity-kind}:{userId}. Every list view a mutation can affect
// has exactly one key per user, so invalidation sets stay enumerable.
func IncomingLikesKey(userID string) string { return fmt.Sprintf("incoming_likes:%s", userID) }
func SentLikesKey(userID string) string     { return fmt.Sprintf("sent_likes:%s", userID) }
func MatchesKey(userID string) string       { return fmt.Sprintf("matches:%s", userID) }
func ConversationsKey(userID string) string { return fmt.Sprintf("conversations:%s", userID) }
func ProfileKey(userID string) string       { return fmt.Sprintf("profile:%s", userID) }

func SessionKey(jti string) string { return fmt.Sprintf("session:%s", jti) }

// GetOrLoad is the single read-through path for cached views. Any cache
// failure (unreachable Redis, corrupt payload) degrades to a miss: the loader
// runs against the source of truth and its result is returned regardless of
// whether the repopulating Set succeeds.
func GetOrLoad[T any](ctx context.Context, c *RedisCache, log *slog.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	raw, err := c.Get(ctx, key)
	if err == nil {
		var cached T
		if uerr := json.Unmarshal([]byte(raw), &cached); uerr == nil {
			return cached, nil
		}
		log.Warn("cache payload unreadable, reloading", "key", key)
	} else if !errors.Is(err, ErrMiss) {
		log.Warn("cache read failed, falling back to store", "key", key, "err", err)
	}

	var zero T
	result, err := load(ctx)
	if err != nil {
		return zero, err
	}

	if payload, merr := json.Marshal(result); merr == nil {
		if serr := c.Set(ctx, key, payload, ttl); serr != nil {
			log.Warn("cache populate failed", "key", key, "err", serr)
		}
	}

	return result, nil
}

// Invalidate deletes the given cache keys best-effort. A failed delete is
// logged and otherwise ignored: the mutation that triggered it has already
// committed and must not be failed by the cache layer.
func Invalidate(ctx context.Context, c *RedisCache, log *slog.Logger, keys ...string) {
	if err := c.Del(ctx, keys...); err != nil {
		log.Warn("cache invalidation failed", "keys", keys, "err", err)
	}
}
