package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Idle buckets are swept once every sweepEvery lookups.
const (
	defaultIdleTTL = 10 * time.Minute
	sweepEvery     = 5000
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByClient keys buckets by the visitor namespace resolved by
// ClientIdentity ("client:<id>" or "ip:<addr>"). Without ClientIdentity in the
// chain it falls back to the remote IP.
func KeyByClient() keyFunc {
	return func(c *gin.Context) string {
		ns, _ := c.Get(ctxKeyClientID)
		s, _ := ns.(string)
		switch {
		case s == "":
			return "ip:" + c.ClientIP()
		case strings.HasPrefix(s, "ip:"):
			return s
		default:
			return "client:" + s
		}
	}
}

// budget is one visitor's pair of token buckets. write is nil when the
// limiter has no separate write budget.
type budget struct {
	all      *rate.Limiter
	write    *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles visitors with in-process token buckets.
//
// Every request spends a token from the visitor's general bucket. When a
// write budget is configured, requests that change the visitor's submissions
// (anything but GET, HEAD and OPTIONS) also spend from a smaller write
// bucket, which keeps a scripted client from hammering the contact form while
// reads stay cheap. The per-visitor submission ceiling is enforced by the
// services, not here.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	writeRPS   rate.Limit
	writeBurst int

	keyFn keyFunc

	mu      sync.Mutex
	budgets map[string]*budget
	idleTTL time.Duration
	lookups uint64
}

// RateOption customizes a RateLimiter.
type RateOption func(*RateLimiter)

// WithWriteBudget adds a dedicated bucket for state-changing requests. A
// non-positive rps disables it.
func WithWriteBudget(rps float64, burst int) RateOption {
	return func(rl *RateLimiter) {
		if rps <= 0 {
			return
		}
		rl.writeRPS = rate.Limit(rps)
		rl.writeBurst = max(burst, 1)
	}
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (coerced to at least 1), with buckets keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, opts ...RateOption) *RateLimiter {
	rl := &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   max(burst, 1),
		keyFn:   keyFn,
		budgets: make(map[string]*budget),
		idleTTL: defaultIdleTTL,
	}
	for _, o := range opts {
		o(rl)
	}
	return rl
}

// budgetFor returns the visitor's buckets, creating them on first sight.
// The idle sweep runs before the lookup so a stale entry for key is replaced
// rather than refreshed.
func (rl *RateLimiter) budgetFor(key string, now time.Time) *budget {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		rl.lookups = 0
		for k, b := range rl.budgets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.budgets, k)
			}
		}
	}

	b, ok := rl.budgets[key]
	if !ok {
		b = &budget{all: rate.NewLimiter(rl.rps, rl.burst)}
		if rl.writeRPS > 0 {
			b.write = rate.NewLimiter(rl.writeRPS, rl.writeBurst)
		}
		rl.budgets[key] = b
	}
	b.lastSeen = now
	return b
}

// IsRateBypass reports whether IdempotencyValidator marked the request as a
// replay of a completed submission. Replays are never throttled.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyRateBypass)
	v, _ := b.(bool)
	return v
}

// Handler returns the Gin middleware. A throttled request gets 429 with the
// rate_limited envelope and a Retry-After rounded up to whole seconds.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		b := rl.budgetFor(rl.keyFn(c), time.Now())
		if !b.all.Allow() {
			c.Header("Retry-After", retryAfter(b.all))
			reject(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		if b.write != nil && isWrite(c.Request.Method) && !b.write.Allow() {
			c.Header("Retry-After", retryAfter(b.write))
			reject(c, http.StatusTooManyRequests, "rate_limited", "too many submissions, slow down")
			return
		}
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// retryAfter is the number of whole seconds until lim holds one token.
func retryAfter(lim *rate.Limiter) string {
	r := float64(lim.Limit())
	if r <= 0 {
		return "60"
	}
	secs := math.Ceil((1 - lim.Tokens()) / r)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(int(secs))
}
