package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ClientIDHeader  = "X-Client-Id"
	defaultClientID = "default"
	clientIDKey     = "client_id"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// ClientIdentity resolves which client's storage a request reads and writes.
// There is no authentication; the id is whatever the browser sends.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ClientIDHeader))
		if id == "" {
			id = defaultClientID
		}

		if !clientIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid client id"})
			return
		}

		c.Set(clientIDKey, id)
		c.Next()
	}
}

func clientID(c *gin.Context) string {
	if id := c.GetString(clientIDKey); id != "" {
		return id
	}
	return defaultClientID
}
