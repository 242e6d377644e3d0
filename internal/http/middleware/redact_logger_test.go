package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRedactor_Scrub(t *testing.T) {
	red := newRedactor(RedactOptions{})
	cases := map[string]string{
		"":                       "",
		"plain text":             "plain text",
		"mail jane.doe+x@ex.com": "mail [REDACTED:email]",
		"call 555-123-4567":      "call [REDACTED:phone]",
		"id 123e4567-e89b-12d3-a456-426614174000": "id [REDACTED:id]",
	}
	for in, want := range cases {
		if got := red.scrub(in); got != want {
			t.Fatalf("scrub(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRedactor_RawQuery(t *testing.T) {
	red := newRedactor(RedactOptions{MaskQuery: []string{" userName ", ""}})

	if got := red.rawQuery(""); got != "" {
		t.Fatalf("empty query = %q", got)
	}
	got := red.rawQuery("userName=Sam&rating=5&email=a@b.com")
	if strings.Contains(got, "Sam") || strings.Contains(got, "a@b.com") || strings.Contains(got, "a%40b.com") {
		t.Fatalf("query leaked PII: %q", got)
	}
	if !strings.Contains(got, "rating=5") {
		t.Fatalf("unmasked parameter dropped: %q", got)
	}
	// Unparsable queries are still pattern-scrubbed.
	if got := red.rawQuery("%zz&mail=a@b.com"); strings.Contains(got, "a@b.com") {
		t.Fatalf("bad query leaked email: %q", got)
	}
	if got := red.rawQuery("q=" + strings.Repeat("x", 2*maxQueryLogLength)); len(got) > maxQueryLogLength+len("…") {
		t.Fatalf("query not truncated: %d bytes", len(got))
	}
}

func TestRedactingLogger_AccessLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/submissions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/submissions/1700000000000?email=jane@x.com", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Note", "reach me at jane@x.com")
	req.Header.Set(requestIDHeader, "rid-req")
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/submissions/:id"`,
		`"request_id":"rid-resp"`,
		`"query":"email=[REDACTED:email]"`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Note":"reach me at [REDACTED:email]"`,
		`"message":"http_request"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("access log lacks %s:\n%s", want, logs)
		}
	}
	for _, leak := range []string{"secret", "topsecret", "shhh", "jane@x.com"} {
		if strings.Contains(logs, leak) {
			t.Fatalf("access log leaked %q:\n%s", leak, logs)
		}
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusCreated, "info"},
		{http.StatusConflict, "warn"},
		{http.StatusTooManyRequests, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.level+"/"+http.StatusText(tc.status), func(t *testing.T) {
			buf := captureLogger(t)
			r := gin.New()
			r.Use(RedactingLogger(RedactOptions{}))
			r.POST("/submissions", func(c *gin.Context) { c.Status(tc.status) })

			// Without a response header the request's X-Request-ID is used.
			req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
			req.Header.Set(requestIDHeader, "rid-level")
			r.ServeHTTP(httptest.NewRecorder(), req)

			if !strings.Contains(buf.String(), `"level":"`+tc.level+`"`) ||
				!strings.Contains(buf.String(), `"request_id":"rid-level"`) {
				t.Fatalf("status %d logged as:\n%s", tc.status, buf.String())
			}
		})
	}
}

func TestRedactingLogger_UnmatchedPathScrubbed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/lookup/jane@x.com", nil))
	if strings.Contains(buf.String(), "jane@x.com") || !strings.Contains(buf.String(), `"path":"/lookup/[REDACTED:email]"`) {
		t.Fatalf("unmatched path not scrubbed:\n%s", buf.String())
	}
}

func TestRedactingLogger_MaskQueryAndClientID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := captureLogger(t)

	r.Use(RedactingLogger(RedactOptions{MaskQuery: []string{"userName", "writtenReview"}}))
	r.Use(ClientIdentity())
	r.GET("/reviews/summary", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet,
		"/reviews/summary?productName=Widget&userName=Sam+Smith&writtenReview=call+me+at+home", nil)
	req.Header.Set(HeaderClientID, "visitor-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	logs := buf.String()
	if strings.Contains(logs, "Sam") || strings.Contains(logs, "call+me") {
		t.Fatalf("masked query values leaked: %s", logs)
	}
	if !strings.Contains(logs, "productName=Widget") {
		t.Fatalf("unmasked parameter should be kept: %s", logs)
	}
	if !strings.Contains(logs, `"client_id":"visitor-7"`) {
		t.Fatalf("expected client_id in access log: %s", logs)
	}
}

func TestRedactingLogger_AttachesRequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := captureLogger(t)

	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("from-gin")
		zerolog.Ctx(c.Request.Context()).Info().Msg("from-ctx")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/use", nil)
	req.Header.Set("X-Request-ID", "rid-scoped")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "from-") && !strings.Contains(line, `"request_id":"rid-scoped"`) {
			t.Fatalf("scoped log line missing request_id: %s", line)
		}
	}
	if !strings.Contains(buf.String(), "from-gin") || !strings.Contains(buf.String(), "from-ctx") {
		t.Fatalf("expected both scoped log lines: %s", buf.String())
	}
}
