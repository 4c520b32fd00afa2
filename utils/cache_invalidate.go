package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator purges response-cache namespaces after writes so readers
// never see stale rosters, leaderboards or posts for longer than one request.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

func (ci *CacheInvalidator) purge(ctx context.Context, pattern string) {
	iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	ci.purge(ctx, "cache:events:list:*")
}

// PurgeEventItem drops all single-event entries; keys embed a hash of the id,
// so a targeted delete would need the same derivation. Scanning the namespace
// is cheap at this cardinality.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id string) {
	ci.purge(ctx, "cache:events:item:*")
}

func (ci *CacheInvalidator) PurgeLeaderboard(ctx context.Context) {
	ci.purge(ctx, "cache:leaderboard:*")
}

func (ci *CacheInvalidator) PurgePosts(ctx context.Context) {
	ci.purge(ctx, "cache:posts:*")
}
