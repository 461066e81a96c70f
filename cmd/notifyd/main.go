// Command notifyd runs the notification pipeline: the HTTP API with the live
// channel, and the notification, analytics and cache invalidation consumer
// groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifyhub/internal/api"
	"github.com/dmitrymomot/notifyhub/internal/consumer"
	"github.com/dmitrymomot/notifyhub/internal/live"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/producer"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/internal/social"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/config"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	"github.com/dmitrymomot/notifyhub/pkg/pg"
	"github.com/dmitrymomot/notifyhub/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.app.Env, cfg.app.Name),
		logger.WithContextExtractors(api.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	var checks []httpserver.Check

	var rdb *goredis.Client
	if cfg.needsRedis() {
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}

	// Event log
	var broker eventlog.Broker
	switch cfg.eventlog.Backend {
	case backendMemory:
		broker = eventlog.NewMemoryBroker()
	case backendRedis:
		broker = eventlog.NewRedisBroker(rdb, eventlog.WithMaxLen(cfg.eventlog.StreamMaxLen))
	default:
		return fmt.Errorf("unknown EVENTLOG_BACKEND %q", cfg.eventlog.Backend)
	}
	events := eventlog.New(broker, append(cfg.eventlog.Options(), eventlog.WithLogger(log))...)

	// Cache
	var store cache.Store
	switch cfg.cache.Backend {
	case backendMemory:
		store = cache.NewMemoryStore(cfg.cache.MemoryCapacity)
	case backendRedis:
		store = cache.NewRedisStore(rdb)
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", cfg.cache.Backend)
	}
	c := cache.New(store, append(cfg.cache.Options(), cache.WithLogger(log))...)
	defer c.Wait()

	// Notifications
	var notifStore notification.Store
	switch cfg.notification.Backend {
	case backendMemory:
		notifStore = notification.NewMemoryStore()
	case backendPostgres:
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, notification.Migrations, pc, log); err != nil {
			return err
		}
		notifStore = notification.NewPostgresStore(pool)
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	default:
		return fmt.Errorf("unknown NOTIFICATIONS_BACKEND %q", cfg.notification.Backend)
	}
	notifications := notification.NewService(notifStore,
		notification.WithLogger(log),
		notification.WithCache(c),
		notification.WithConfig(cfg.notification))

	// Push
	var subscriptions push.SubscriptionStore
	switch cfg.push.Backend {
	case backendMemory:
		subscriptions = push.NewMemoryStore()
	case backendMongo:
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return err
		}
		client, err := mongo.New(ctx, mc)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()
		ms := push.NewMongoStore(client.Database(mc.Database), cfg.push.Collection)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return err
		}
		subscriptions = ms
		checks = append(checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})
	default:
		return fmt.Errorf("unknown PUSH_STORE %q", cfg.push.Backend)
	}

	var pusher consumer.PushDeliverer
	if cfg.push.Enabled() {
		sender, err := push.NewWebPushSender(cfg.push, &http.Client{Timeout: cfg.push.Timeout})
		if err != nil {
			return err
		}
		pusher = push.NewDeliverer(subscriptions, sender,
			push.WithLogger(log),
			push.WithRetry(cfg.push.RetryAttempts, cfg.push.RetryBackoff))
	} else {
		log.WarnContext(ctx, "push delivery disabled: VAPID keys are not configured")
	}

	// Live
	tokens, err := jwt.New(cfg.jwt)
	if err != nil {
		return err
	}
	auth := live.NewAuthenticator(tokens)
	registry := live.NewRegistry(live.WithRegistryLogger(log))
	liveHandler := live.NewHandler(auth, registry, notifications,
		live.WithHandlerLogger(log),
		live.WithHandlerConfig(cfg.live))

	// Business collaborator
	socialSvc := social.NewService(social.NewGraph(), c,
		producer.New(events, producer.WithLogger(log)),
		social.WithLogger(log),
		social.WithStatsTTL(cfg.cache.FollowStatsTTL))

	// Consumers
	consumerOpts := slices.Clip(append(cfg.consumer.Options(),
		consumer.WithLogger(log),
		consumer.WithPushAssets(cfg.push.Icon, cfg.push.Badge)))
	group := func(name string) []consumer.Option {
		return append(consumerOpts, consumer.WithGroup(name))
	}
	notifConsumer := consumer.NewNotifications(notifications,
		consumer.FollowerSourceFunc(socialSvc.CurrentFollowers),
		live.NewFanout(registry), pusher,
		group(cfg.consumer.NotificationsGroup)...)
	analytics := consumer.NewAnalytics(c, group(cfg.consumer.AnalyticsGroup)...)
	invalidation := consumer.NewInvalidation(c, group(invalidationGroup(cfg))...)

	// HTTP
	apiOpts := []api.Option{
		api.WithLogger(log),
		api.WithLive(liveHandler),
		api.WithHealth(httpserver.HealthHandler(log, cfg.http.HealthTimeout, checks...)),
		api.WithVAPIDPublicKey(cfg.push.VAPIDPublicKey),
	}
	if cfg.app.SocialEnabled {
		apiOpts = append(apiOpts, api.WithSocial(socialSvc))
	}
	router := api.NewServer(auth, notifications, subscriptions, apiOpts...).Router()
	server := httpserver.NewFromConfig(cfg.http,
		httpserver.WithLogger(log),
		httpserver.WithOnShutdown(registry.Close))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, router) })
	g.Go(func() error { return notifConsumer.Run(gctx, events) })
	g.Go(func() error { return analytics.Run(gctx, events) })
	g.Go(func() error { return invalidation.Run(gctx, events) })

	err = g.Wait()
	registry.Close()
	notifConsumer.Wait()
	log.InfoContext(context.WithoutCancel(ctx), "notifyd stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// invalidationGroup returns the cache invalidation consumer group. A memory
// cache is local to this process, so every instance needs its own group to
// see every invalidation.
func invalidationGroup(cfg settings) string {
	group := cfg.consumer.InvalidationGroup
	if cfg.cache.Backend != backendMemory {
		return group
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid%d", os.Getpid())
	}
	return group + "-" + host
}
