package middleware

// Every stateful endpoint is scoped to a visitor namespace. A browser keeps
// its submissions in its own storage; the server mirrors that by keying
// storage rows on a client id. Clients send a stable opaque id in
// X-Client-ID; requests without one are keyed on the remote address.

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderClientID carries the caller's stable visitor id.
const HeaderClientID = "X-Client-ID"

const (
	ctxKeyClientID = "clientID"
	maxClientIDLen = 128
)

var clientIDRE = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// ClientIdentity validates X-Client-ID and stores the resolved namespace in
// the Gin context. Malformed ids are rejected with 400.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderClientID)
		if id == "" {
			c.Set(ctxKeyClientID, "ip:"+c.ClientIP())
			c.Next()
			return
		}
		if len(id) > maxClientIDLen || !clientIDRE.MatchString(id) {
			reject(c, http.StatusBadRequest, "bad_client_id", "invalid X-Client-ID")
			return
		}
		c.Set(ctxKeyClientID, id)
		c.Next()
	}
}

// ClientID returns the namespace resolved by ClientIdentity, falling back to
// the remote address when the middleware did not run.
func ClientID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyClientID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request == nil {
		return "ip:"
	}
	return "ip:" + c.ClientIP()
}
