package utils

import (
	"net"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP returns the client address as gin resolves it.
// Forwarding headers are honoured only from the engine's trusted proxies,
// so a client cannot pick its own rate-limit bucket.
func ExtractClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if net.ParseIP(ip) != nil {
		return ip
	}
	return "127.0.0.1"
}
