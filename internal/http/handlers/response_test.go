package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contact-backend/internal/http/middleware"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// serve runs h behind RequestID with the given incoming request id.
func serve(h gin.HandlerFunc, rid string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Any("/x", h)
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Request-ID", rid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFail_Envelope(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		code, msg string
		logged    bool
	}{
		{"not found", http.StatusNotFound, ErrCodeNotFound, "route not found", false},
		{"conflict", http.StatusConflict, ErrCodeCapacityExceeded, "You have reached the maximum", false},
		{"internal", http.StatusInternalServerError, ErrCodeInternal, "storage unavailable", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			w := serve(func(c *gin.Context) { Fail(c, tc.status, tc.code, tc.msg) }, "rid-"+tc.name[:3])

			if w.Code != tc.status {
				t.Fatalf("status = %d; want %d", w.Code, tc.status)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json: %v", err)
			}
			want := ErrorResponse{RequestID: "rid-" + tc.name[:3], Code: tc.code, Message: tc.msg}
			if resp != want {
				t.Fatalf("body = %+v; want %+v", resp, want)
			}
			if got := strings.Contains(logs.String(), `"level":"error"`); got != tc.logged {
				t.Fatalf("error logged = %v; want %v (%s)", got, tc.logged, logs.String())
			}
		})
	}
}

func TestSuccessHelpers(t *testing.T) {
	w := serve(func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"id": 1700000000000}) }, "rid-ok")
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"id":1700000000000`) {
		t.Fatalf("ok = %d %s", w.Code, w.Body.String())
	}

	w = serve(noContent, "rid-204")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent = %d %q", w.Code, w.Body.String())
	}
}

func TestFailValidation_LogsFieldNamesOnly(t *testing.T) {
	logs := captureLogs(t)
	fields := map[string]string{
		"email":    "Please enter a valid email address",
		"fullName": "Please enter your full name",
	}
	w := serve(func(c *gin.Context) {
		failValidation(c, "Please correct the highlighted fields.", fields)
	}, "rid-422")

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-422" || resp.Code != ErrCodeValidationFailed || len(resp.Fields) != 2 {
		t.Fatalf("unexpected body: %+v", resp)
	}

	out := logs.String()
	if !strings.Contains(out, `"fields":["email","fullName"]`) {
		t.Fatalf("expected sorted field names in log, got: %s", out)
	}
	if strings.Contains(out, "valid email address") || strings.Contains(out, "full name") {
		t.Fatalf("field messages leaked into log: %s", out)
	}
}
