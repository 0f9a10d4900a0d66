package httpapi

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"school-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated failed logins per email using the redis
// failed-login counter. Every path through it fails open: if redis is down,
// logins proceed and the outage is logged.
type LoginLimiter struct {
	RDB         *redis.Client
	MaxAttempts int64
	Window      time.Duration
	Log         *slog.Logger
}

func NewLoginLimiter(rdb *redis.Client, log *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		RDB:         rdb,
		MaxAttempts: 10,
		Window:      15 * time.Minute,
		Log:         log,
	}
}

func limiterKey(email string) string {
	return "login:failed:" + strings.ToLower(strings.TrimSpace(email))
}

// Blocked reports whether the email has exhausted its attempts.
func (l *LoginLimiter) Blocked(ctx context.Context, email string) bool {
	if l == nil || l.RDB == nil {
		return false
	}
	n, err := utils.FailedLoginCount(ctx, l.RDB, limiterKey(email))
	if err != nil {
		l.Log.Warn("login limiter read failed", "err", err)
		return false
	}
	return n >= l.MaxAttempts
}

// Failure records a failed attempt.
func (l *LoginLimiter) Failure(ctx context.Context, email string) {
	if l == nil || l.RDB == nil {
		return
	}
	if _, err := utils.RegisterFailedLogin(ctx, l.RDB, limiterKey(email), l.Window); err != nil {
		l.Log.Warn("login limiter write failed", "err", err)
	}
}

// Success clears the counter.
func (l *LoginLimiter) Success(ctx context.Context, email string) {
	if l == nil || l.RDB == nil {
		return
	}
	if err := utils.ClearFailedLogins(ctx, l.RDB, limiterKey(email)); err != nil {
		l.Log.Warn("login limiter clear failed", "err", err)
	}
}
