// Package health serves liveness and readiness probes.
//
// Readiness runs the configured [Checks] concurrently:
//
//	checker := health.NewChecker(health.Checks{
//		"redis":    redis.Healthcheck(client),
//		"postgres": db.Healthcheck(pool),
//	}, health.WithTimeout(2*time.Second))
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", checker.ReadinessHandler())
//
// Both endpoints answer with a JSON [Response].
package health
