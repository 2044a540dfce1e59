package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

func keyID(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

// CacheConfig pairs a TTL with a key namespace.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	ProblemCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "problem:",
	}

	// Rank changes on every first solve, keep it short-lived.
	RankCacheConfig = CacheConfig{
		TTL:    1 * time.Minute,
		Prefix: "rank:",
	}
)

// CacheManager groups the namespaced helpers used across repositories.
type CacheManager struct {
	Problem *CacheHelper
	Rank    *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Problem: NewCacheHelper(client, ProblemCacheConfig.Prefix),
		Rank:    NewCacheHelper(client, RankCacheConfig.Prefix),
	}
}

// SafeDelete deletes cache keys, logging instead of failing the request.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern invalidates a pattern, logging on failure.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateProblemCache drops a problem's cached row and the rank, which
// depends on its current score.
func InvalidateProblemCache(ctx context.Context, cm *CacheManager, problemID uint) {
	SafeDelete(ctx, cm.Problem, keyID(problemID))
	SafeInvalidatePattern(ctx, cm.Rank, "*")
}

// InvalidateRankCache drops every cached rank page.
func InvalidateRankCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Rank, "*")
}
