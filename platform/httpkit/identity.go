// Package httpkit provides HTTP identity helpers.
// Authentication proper is handled by the fronting gateway, which forwards
// the acting username in a trusted header; this deployment only needs the
// identity for attribution (evento reporter, compromiso creator).
package httpkit

import (
	"context"

	"reportes_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUsernameKey is the gin context key for the acting username.
	ContextUsernameKey = "username"

	// IdentityHeader carries the authenticated username set by the gateway.
	IdentityHeader = "X-User"
)

// Identity reads the gateway identity header into the gin context and the
// request context, so services and the logger can attribute the request.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader(IdentityHeader)
		if user != "" {
			c.Set(ContextUsernameKey, user)
			ctx := context.WithValue(c.Request.Context(), logger.UserKey, user)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// CurrentUser returns the acting username, or empty when the request is
// anonymous. Callers treat the empty value as "no attribution", never as an
// error.
func CurrentUser(c *gin.Context) string {
	if user, ok := c.Get(ContextUsernameKey); ok {
		if name, ok := user.(string); ok {
			return name
		}
	}
	return ""
}
