package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"limit-book/src/config"
)

type clientWindow struct {
	number int64
	count  int
}

// RateLimiter is a fixed-window limiter keyed by client IP.
type RateLimiter struct {
	maxRequests    int
	windowDuration time.Duration
	windows        map[string]*clientWindow
	current        int64
	mu             sync.Mutex
	now            func() time.Time
}

func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{
		maxRequests:    cfg.MaxRequests,
		windowDuration: window,
		windows:        make(map[string]*clientWindow),
		now:            time.Now,
	}
}

func (rl *RateLimiter) getClientID(c *fiber.Ctx) string {
	ip := c.Get("X-Forwarded-For")
	if ip == "" {
		ip = c.Get("X-Real-IP")
	}
	if ip == "" {
		ip = c.IP()
	}
	return ip
}

func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	number := rl.now().UnixNano() / rl.windowDuration.Nanoseconds()

	// edge case: on rollover forget clients idle since an older window
	if number != rl.current {
		rl.current = number
		for id, w := range rl.windows {
			if w.number < number {
				delete(rl.windows, id)
			}
		}
	}

	w, exists := rl.windows[clientID]
	// edge case: a new window resets the count
	if !exists || w.number != number {
		rl.windows[clientID] = &clientWindow{number: number, count: 1}
		return true
	}

	if w.count >= rl.maxRequests {
		return false
	}

	w.count++
	return true
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := rl.getClientID(c)

		if !rl.Allow(clientID) {
			log.Warn().
				Str("client_ip", clientID).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("max_requests", rl.maxRequests).
				Msg("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Window", rl.windowDuration.String())

		return c.Next()
	}
}
