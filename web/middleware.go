// ABOUTME: Gin middleware for request ids, access logging and per-client quotas
// ABOUTME: Rejected requests never reach the chat handler or the provider
package web

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/harperreed/nudge/apierr"
	"github.com/harperreed/nudge/ratelimit"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// statusLimiter is implemented by limiters that can report quota state.
type statusLimiter interface {
	Consume(clientID string) (bool, ratelimit.Status)
}

// requestID tags each request with a ULID. A well-formed incoming id is kept.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := ulid.ParseStrict(id); err != nil {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// rateLimit spends one unit of the caller's quota. Over-quota requests get a
// 429 with Retry-After and RateLimit-* headers.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()

		sl, ok := s.limiter.(statusLimiter)
		if !ok {
			if !s.limiter.TryConsume(client) {
				s.fail(c, apierr.RateLimited(RateLimitMessage))
				return
			}
			c.Next()
			return
		}

		allowed, st := sl.Consume(client)
		resetSecs := int(math.Ceil(st.Reset.Sub(s.now()).Seconds()))
		if resetSecs < 0 {
			resetSecs = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(st.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(st.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetSecs))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(resetSecs))
			s.fail(c, apierr.RateLimited(RateLimitMessage))
			return
		}
		c.Next()
	}
}
