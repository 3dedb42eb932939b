// Package identity resolves the current caller's identity. The workflow layer
// never reads ambient session state; the address is threaded explicitly from
// the verified token into every facade call.
package identity

import "github.com/gin-gonic/gin"

const contextKey = "identity"

// Set stores the verified caller address on the request context.
func Set(c *gin.Context, address string) {
	c.Set(contextKey, address)
}

// FromContext returns the caller address, or ok=false when the request is
// unauthenticated.
func FromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return "", false
	}
	addr, ok := v.(string)
	if !ok || addr == "" {
		return "", false
	}
	return addr, true
}
