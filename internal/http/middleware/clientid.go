// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the client identity used for rate limiting and
// idempotency replay detection.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderClientID is the optional request header through which the embedding
// website identifies a widget instance. When absent, middleware falls back to
// the client IP.
const HeaderClientID = "X-Client-Id"

// ClientIdentity stashes the caller's identity in the Gin context under
// "clientID" so the rate limiter, the idempotency validator and the access
// logger all key on the same value.
//
// Place this before RateLimiter and IdempotencyValidator.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderClientID)); id != "" {
			c.Set("clientID", id)
		}
		c.Next()
	}
}
