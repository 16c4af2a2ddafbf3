// Package redis opens go-redis clients for the session store.
//
// Settings come from [Config], which is populated from REDIS_* environment
// variables. Zero fields fall back to [DefaultConfig].
//
//	client := redis.MustOpen(ctx, cfg.Redis)
//	defer client.Close()
//
//	store := session.NewRedisStore(client, session.WithPrefix("identity"))
//
// [Healthcheck] adapts the client to a readiness check and [Shutdown] to a
// shutdown hook:
//
//	app := identity.New(
//		identity.WithHealthChecks(identity.WithReadinessCheck("redis", redis.Healthcheck(client))),
//	)
//	err := app.Run(":8080", identity.ShutdownHook(redis.Shutdown(client)))
//
// Sentinel errors ([ErrEmptyConnectionURL], [ErrFailedToParseURL],
// [ErrConnectionFailed], [ErrHealthcheckFailed]) are wrapped with [errors.Join].
package redis
