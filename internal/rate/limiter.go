package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters. A zero Max disables the
// corresponding limit.
type Config struct {
	EnableIPThrottle bool

	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration

	MaxActivationAttempts      int
	ActivationCooldownDuration time.Duration

	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration

	MaxRegistrationsPerIP int
	RegistrationCooldown  time.Duration
}

// Limiter enforces per-identifier and per-IP budgets using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin checks whether the email (and IP, when enabled) is within the
// failed-login budget.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if l.config.MaxLoginAttempts <= 0 {
		return nil
	}
	if err := l.checkCounter(ctx, loginUserKey(email), l.config.MaxLoginAttempts); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		return l.checkCounter(ctx, loginIPKey(ip), l.config.MaxLoginAttempts)
	}
	return nil
}

// IncrementLogin records a failed login attempt.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	if l.config.MaxLoginAttempts <= 0 {
		return nil
	}
	if err := l.bump(ctx, loginUserKey(email), l.config.MaxLoginAttempts, l.config.LoginCooldownDuration); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		return l.bump(ctx, loginIPKey(ip), l.config.MaxLoginAttempts, l.config.LoginCooldownDuration)
	}
	return nil
}

// ResetLogin clears the failed-login counters after a successful login.
// The IP counter is left alone so one valid account cannot launder a
// spraying address.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, loginUserKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetLoginAttempts returns the current failed-login count for email.
// Missing keys return zero and do not reveal account existence.
func (l *Limiter) GetLoginAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, loginUserKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// CheckActivation checks the wrong-code budget for a pending registration.
// Activation codes are short, so this is what keeps them from being guessed
// inside the ticket lifetime.
func (l *Limiter) CheckActivation(ctx context.Context, email string) error {
	if l.config.MaxActivationAttempts <= 0 {
		return nil
	}
	return l.checkCounter(ctx, activationKey(email), l.config.MaxActivationAttempts)
}

// IncrementActivation records a wrong activation code.
func (l *Limiter) IncrementActivation(ctx context.Context, email string) error {
	if l.config.MaxActivationAttempts <= 0 {
		return nil
	}
	return l.bump(ctx, activationKey(email), l.config.MaxActivationAttempts, l.config.ActivationCooldownDuration)
}

// ResetActivation clears the wrong-code counter after a successful activation.
func (l *Limiter) ResetActivation(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, activationKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// CheckRefresh counts a refresh call for userID and fails once the window
// budget is spent.
func (l *Limiter) CheckRefresh(ctx context.Context, userID string) error {
	if l.config.MaxRefreshAttempts <= 0 {
		return nil
	}
	return l.bump(ctx, refreshKey(userID), l.config.MaxRefreshAttempts, l.config.RefreshCooldownDuration)
}

// CheckRegistration counts a registration request from ip.
func (l *Limiter) CheckRegistration(ctx context.Context, ip string) error {
	if l.config.MaxRegistrationsPerIP <= 0 || ip == "" {
		return nil
	}
	return l.bump(ctx, registrationKey(ip), l.config.MaxRegistrationsPerIP, l.config.RegistrationCooldown)
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) bump(ctx context.Context, key string, maxAttempts int, ttl time.Duration) error {
	count, err := l.incrementWithTTL(ctx, key, ttl)
	if err != nil {
		return err
	}
	if count > int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func loginUserKey(email string) string {
	return "rl:l:" + strings.ToLower(email)
}

func loginIPKey(ip string) string {
	return "rl:li:" + ip
}

func activationKey(email string) string {
	return "rl:a:" + strings.ToLower(email)
}

func refreshKey(userID string) string {
	return "rl:r:" + userID
}

func registrationKey(ip string) string {
	return "rl:g:" + ip
}
