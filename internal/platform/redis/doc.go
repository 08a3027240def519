// Package redis provides the Redis-backed cache gateway and fixed-window
// rate limiter, sharing one go-redis client.
package redis
