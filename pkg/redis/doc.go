// Package redis opens go-redis clients from configuration. Open retries the
// first ping with a growing delay so the application can start alongside
// its Redis container. Healthcheck adapts a client to the health package.
package redis
