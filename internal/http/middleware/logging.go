package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxQueryLogLength caps the logged query string in bytes.
	maxQueryLogLength = 2048
)

// Incoming request ids end up in logs and in error bodies shown by the
// contact form, so only short token-like values are trusted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,128}$`)

// RequestID reuses a well-formed X-Request-ID from the caller or mints a UUID,
// then echoes it on the response. Install it first so every later middleware
// and error envelope can quote it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery turns a handler panic into a 500 internal_error envelope and logs
// the stack on the request-scoped logger. When the handler had already
// started the response only the status is forced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", c.GetString(requestIDKey)).
				Msg("panic recovered")

			if c.Writer.Written() {
				httpRejections.WithLabelValues("internal_error").Inc()
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			reject(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the logger RedactingLogger attached to the request, or
// the global logger when none was attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	v, _ := c.Get(loggerKey)
	if lg, ok := v.(*zerolog.Logger); ok {
		return lg
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes plus an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
