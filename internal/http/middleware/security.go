package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultHSTSMaxAge = 180 * 24 * time.Hour
	apiCSP            = "default-src 'none'; frame-ancestors 'none'"
	permissionsPolicy = "geolocation=(), microphone=(), camera=(), payment=()"
)

// SecurityOptions selects the optional hardening headers.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests. Leave it
	// off unless the proxy to app hop is TLS as well.
	EnableHSTS bool
	HSTSMaxAge time.Duration // defaults to 180 days

	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool

	// APIPrefix, when set, locks responses under it down with a
	// Content-Security-Policy that forbids every subresource. JSON never
	// needs one, and the HTML Swagger UI lives outside the prefix.
	APIPrefix string
}

// SecurityHeaders sets nosniff, DENY framing and no-referrer on every
// response, plus the optional headers chosen in opt. It also makes
// X-Request-ID readable by browser clients so the contact form can quote it
// when a submit fails.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", permissionsPolicy)
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.APIPrefix != "" && strings.HasPrefix(c.Request.URL.Path, opt.APIPrefix) {
			h.Set("Content-Security-Policy", apiCSP)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}
		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers unless present.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(cur, name):
		h.Set(key, cur+", "+name)
	}
}

// isHTTPS trusts X-Forwarded-Proto because the service runs behind a proxy.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// NoStore keeps responses of the wrapped routes out of browser and shared
// caches. Submission payloads echo names, emails and phone numbers.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		c.Next()
	}
}
