package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// corsOptions admit any http(s) origin; access is gated by bearer tokens, not cookies.
var corsOptions = cors.Options{
	AllowedOrigins: []string{"https://*", "http://*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	MaxAge:         300,
}

// withCORS runs the go-chi CORS handler in front of the gin chain. Preflights are
// answered by the handler itself and never reach routing.
func withCORS(opts cors.Options) gin.HandlerFunc {
	handler := cors.Handler(opts)
	return func(c *gin.Context) {
		passed := false
		handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Writer.WriteHeaderNow()
			c.Abort()
		}
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
