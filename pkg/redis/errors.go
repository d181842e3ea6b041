package redis

import "errors"

var (
	ErrEmptyURL   = errors.New("redis.empty_url")
	ErrInvalidURL = errors.New("redis.invalid_url")
	// ErrNotReady means every connection attempt failed or the connect timeout expired.
	ErrNotReady  = errors.New("redis.not_ready")
	ErrUnhealthy = errors.New("redis.unhealthy")
)
