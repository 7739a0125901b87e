// ABOUTME: HTTP chat proxy between nudge clients and the model provider
// ABOUTME: Gin router with CORS, request ids, per-client quotas and normalized errors
package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harperreed/nudge/apierr"
	"github.com/harperreed/nudge/config"
	"github.com/harperreed/nudge/provider"
	"github.com/harperreed/nudge/ratelimit"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "nudge"

// RateLimitMessage is the body text of a 429 from the proxy's own quota.
const RateLimitMessage = "Too many requests, slow down."

type Server struct {
	cfg      *config.Config
	provider provider.Provider
	limiter  ratelimit.Limiter
	logger   *zap.Logger
	router   *gin.Engine
	now      func() time.Time
}

// NewServer wires the routes. A nil limiter gets a fixed window sized from
// cfg; a nil logger discards output.
func NewServer(cfg *config.Config, p provider.Provider, lim ratelimit.Limiter, logger *zap.Logger) *Server {
	if lim == nil {
		lim = ratelimit.NewWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		provider: p,
		limiter:  lim,
		logger:   logger,
		now:      time.Now,
	}

	router := gin.New()
	// Quotas key on the socket peer; forwarded headers are not trusted.
	_ = router.SetTrustedProxies(nil)

	router.Use(
		s.requestID(),
		s.accessLog(),
		gin.CustomRecovery(s.recovered),
		cors.New(corsConfig(cfg.CORSOrigin)),
	)
	router.NoRoute(func(c *gin.Context) {
		s.fail(c, apierr.NotFound("Not found"))
	})

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/chat", s.rateLimit(), s.handleChat)
	}

	s.router = router
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an http.Server bound to the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Retry-After", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if origin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
	}
	return cfg
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		OK:      true,
		Service: ServiceName,
		Time:    s.now().UTC().Format(time.RFC3339Nano),
	})
}

// fail writes the normalized error body and logs the underlying cause.
func (s *Server) fail(c *gin.Context, err error) {
	apiErr := apierr.Normalize(err)

	fields := []zap.Field{
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("code", apiErr.Code),
		zap.Int("status", apiErr.Status),
	}
	if apiErr.Err != nil {
		fields = append(fields, zap.Error(apiErr.Err))
	}
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Info("request rejected", fields...)
	}

	c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
}

func (s *Server) recovered(c *gin.Context, rec any) {
	s.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("request_id", c.GetString(requestIDKey)))
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierr.Internal(nil).Body())
}
