// Package health serves liveness and readiness checks.
//
// Readiness runs every registered check concurrently under one timeout:
//
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"store": db.Ping,
//		"redis": redis.Healthcheck(client),
//	}))
//
// Responses are plain text unless the client asks for JSON with an Accept
// header or ?format=json.
package health
