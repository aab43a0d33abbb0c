// Package ratelimit throttles repeated failed logins per account.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

// LoginThrottle counts failed logins per email inside a fixed window
type LoginThrottle struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
	prefix      string
}

// NewLoginThrottle builds a throttle. A nil client or maxAttempts <= 0 disables it.
func NewLoginThrottle(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{
		rdb:         rdb,
		maxAttempts: int64(maxAttempts),
		window:      window,
		prefix:      "login_attempts",
	}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.rdb != nil && t.maxAttempts > 0
}

func (t *LoginThrottle) key(email string) string {
	return fmt.Sprintf("%s:%s", t.prefix, strings.ToLower(strings.TrimSpace(email)))
}

// Allow returns ErrTooManyAttempts once the failure budget for email is spent.
// Redis errors fail open.
func (t *LoginThrottle) Allow(ctx context.Context, email string) error {
	if !t.enabled() {
		return nil
	}

	n, err := t.rdb.Get(ctx, t.key(email)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Msg("Login throttle lookup failed")
		}
		return nil
	}
	if n >= t.maxAttempts {
		return apperrors.NewCustomError(apperrors.ErrTooManyAttempts, "too many failed login attempts, try again later")
	}
	return nil
}

// Fail records one failed attempt; the first failure opens the window
func (t *LoginThrottle) Fail(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}

	key := t.key(email)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn().Err(err).Msg("Login throttle increment failed")
		return
	}
	if n == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			logger.Warn().Err(err).Msg("Login throttle expire failed")
		}
	}
}

// Reset clears the counter after a successful login
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}
	if err := t.rdb.Del(ctx, t.key(email)).Err(); err != nil {
		logger.Warn().Err(err).Msg("Login throttle reset failed")
	}
}
