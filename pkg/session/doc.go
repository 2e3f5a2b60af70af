// Package session holds server-side session state. A Session is a bag of
// string values with typed helpers; a Store persists it with a sliding idle
// expiry. CacheStore puts sessions in a cache.Cache so the same code runs
// against process memory and Redis.
//
// Cookie handling and per-request loading live in the HTTP host, which
// loads a session on first use and saves it before the response is
// written.
package session
