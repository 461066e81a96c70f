// Package redis connects to Redis with go-redis and exposes a health probe.
//
// The returned client backs both the cache store (pkg/cache) and the event
// log broker (pkg/eventlog):
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	health.Add("redis", redis.Healthcheck(client))
package redis
