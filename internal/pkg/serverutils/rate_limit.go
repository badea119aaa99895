package serverutils

import (
	"sync"
	"time"

	"aura-be/internal/metrics"
	"aura-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per authenticated user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*limiterEntry
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
}

func NewUserRateLimiter(rps float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: make(map[uuid.UUID]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  time.Hour,
	}
}

func (rl *UserRateLimiter) Allow(userID uuid.UUID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Cleanup drops limiters idle for longer than an hour.
func (rl *UserRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.idleTTL)
	for id, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, id)
		}
	}
}

// Middleware must run after AuthMiddleware.
func (rl *UserRateLimiter) Middleware(route string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := GetUserID(ctx)
		if err != nil {
			return err
		}
		if !rl.Allow(userID) {
			metrics.RecordRateLimited(route)
			return apperror.RateLimited("Too many requests, slow down")
		}
		return ctx.Next()
	}
}
