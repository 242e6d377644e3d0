// Package middleware contains the Gin middleware shared by the contact API:
// request ids, the PII-scrubbing access log, panic recovery, visitor
// identity, idempotent submits, rate limiting, security headers and
// Prometheus instrumentation.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const masked = "[REDACTED]"

// Patterns run in this order: ids first so the loose phone pattern cannot eat
// the digit runs of a UUID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// RedactOptions adds to the built-in masks. MaskHeaders match
// case-insensitively on top of Authorization, Cookie and Set-Cookie.
// MaskQuery names query parameters blanked whatever their value, such as
// the reviewer name on the review summary page.
type RedactOptions struct {
	MaskHeaders []string
	MaskQuery   []string
}

type redactor struct {
	headers map[string]struct{}
	query   map[string]struct{}
}

func newRedactor(opts RedactOptions) redactor {
	r := redactor{
		headers: map[string]struct{}{"authorization": {}, "cookie": {}, "set-cookie": {}},
		query:   make(map[string]struct{}, len(opts.MaskQuery)),
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.headers[h] = struct{}{}
		}
	}
	for _, q := range opts.MaskQuery {
		if q = strings.TrimSpace(q); q != "" {
			r.query[q] = struct{}{}
		}
	}
	return r
}

// scrub replaces ids, email addresses and phone numbers found in s.
func (redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

func (r redactor) rawQuery(raw string) string {
	if raw == "" || len(r.query) == 0 {
		return truncate(r.scrub(raw), maxQueryLogLength)
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return truncate(r.scrub(raw), maxQueryLogLength)
	}
	for k, vv := range vals {
		if _, ok := r.query[k]; ok {
			vals[k] = []string{masked}
			continue
		}
		for i, v := range vv {
			vv[i] = r.scrub(v)
		}
	}
	// Encode escapes '@', so scrub the decoded values above.
	return truncate(vals.Encode(), maxQueryLogLength)
}

func (r redactor) header(h map[string][]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, vv := range h {
		if _, ok := r.headers[strings.ToLower(k)]; ok {
			d.Str(k, masked)
			continue
		}
		d.Str(k, r.scrub(strings.Join(vv, ", ")))
	}
	return d
}

// RedactingLogger is the access log. It writes one "http_request" line per
// request, at warn for 4xx and error for 5xx, with the query string and
// headers scrubbed of visitor PII. Bodies are never logged.
//
// It also attaches a logger carrying request_id to the Gin context (see
// LoggerFrom) and to the request context (see zerolog.Ctx) so handlers and
// services log with the correlation id.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	red := newRedactor(opts)

	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		scoped := log.With().Str("request_id", reqID).Logger()
		c.Set(loggerKey, &scoped)
		c.Request = c.Request.WithContext(scoped.WithContext(c.Request.Context()))

		query := red.rawQuery(c.Request.URL.RawQuery)
		headers := red.header(c.Request.Header)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = red.scrub(c.Request.URL.Path)
		}
		status := c.Writer.Status()
		cid, _ := c.Get(ctxKeyClientID)

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", reqID).
			Str("client_id", red.scrub(asString(cid))).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Dict("headers", headers).
			Msg("http_request")
	}
}
