package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mythchat/mythchat/internal/auth"
	"github.com/mythchat/mythchat/internal/common"
)

const (
	UserIDKey   = "user_id"
	DeviceIDKey = "device_id"

	requestIDHeader = "X-Request-ID"
	deviceIDHeader  = "X-Device-ID"
)

// RequestID echoes the caller's request id or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Recovery converts panics into the standard error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v path=%s", r, c.Request.URL.Path)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Device stores the anonymous device id, when the client sent one, for the
// guest store and rate limiter.
func Device() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(deviceIDHeader)); id != "" {
			c.Set(DeviceIDKey, id)
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := bearerUserID(c, jwtSecret)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// AuthOptional accepts anonymous callers but resolves the user id when a
// valid token is present. An invalid token is still rejected rather than
// silently downgraded to anonymous.
func AuthOptional(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		uid, ok := bearerUserID(c, jwtSecret)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func bearerUserID(c *gin.Context, secret string) (uint64, bool) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return 0, false
	}
	uid, err := auth.ParseJWT(token, secret)
	if err != nil {
		return 0, false
	}
	return uid, true
}
