package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key that makes a form submit
// safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

const defaultIdemMaxLen = 200

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, _ := c.Get(ctxKeyIdemKey)
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the visitor already completed a submit under the
// same key. Handlers answer replays with the stored submission so a retried
// form post never counts against the submission ceiling twice.
func IsReplay(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIdemReplay)
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes key validation. Zero values select a 200 byte cap,
// an RFC 7230 style token pattern and the matched route as scope.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
	Scope   string
}

// IdempotencyLookup reports whether a completed, unexpired result exists for
// (clientID, scope, key). Expiry is the lookup's concern.
type IdempotencyLookup func(ctx context.Context, clientID, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator checks the Idempotency-Key of state-changing requests
// and flags replays for the handler and the rate limiter.
//
// Safe methods ignore the header. A malformed key is refused with 400
// bad_idempotency_key. A lookup failure is logged and the request proceeds as
// a first attempt.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !isWrite(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			reject(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup == nil {
			c.Next()
			return
		}
		scope := opts.Scope
		if scope == "" {
			scope = c.FullPath()
		}
		found, err := lookup(c.Request.Context(), ClientID(c), scope, key, time.Now().UTC())
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
		case found:
			idemReplays.WithLabelValues(scope).Inc()
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}
