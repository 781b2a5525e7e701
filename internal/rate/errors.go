package rate

import "errors"

var (
	// ErrRateLimited is returned when a counter has exceeded its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable is returned when the counter backend cannot be reached.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
