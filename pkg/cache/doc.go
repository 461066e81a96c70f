// Package cache is the read-acceleration layer of notifyhub.
//
// A Store is the raw backend (RedisStore in production, MemoryStore for
// single-process runs and tests). Components never talk to a Store directly;
// they go through Cache, which turns every backend failure into a degraded
// answer and trips a circuit breaker so an unreachable backend stops costing
// a round trip per call.
//
// Reads use ReadThrough:
//
//	stats, err := cache.ReadThrough(ctx, c, cache.FollowStatsKey(id), 5*time.Minute,
//	    func(ctx context.Context) (FollowStats, error) {
//	        return repo.FollowStats(ctx, id)
//	    })
//
// Writers delete the affected keys synchronously after their own write:
//
//	c.Del(ctx, cache.FollowStatsKey(followerID), cache.FollowStatsKey(followingID))
//
// Counters such as analytics totals use Incr. The cache is never the only
// writer of a value it accelerates, so losing it loses nothing durable.
package cache
