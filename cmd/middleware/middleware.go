package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/zlog"

	"eventreg/internal/auth"
	"eventreg/internal/dto"
)

// LoggingMiddleware logs one line per request: method, path, status and
// latency.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// AdminAuth guards admin routes. It expects a Bearer token minted by
// the login handler and aborts with 403 otherwise.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(403, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.Forbidden, Desc: "admin token required"},
			})
			return
		}

		username, err := auth.VerifyAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(403, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.Forbidden, Desc: "invalid admin token"},
			})
			return
		}

		c.Set("admin", username)
		c.Next()
	}
}
