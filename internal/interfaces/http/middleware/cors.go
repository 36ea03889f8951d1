package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/psim/backend/internal/infrastructure/config"
)

// CORS builds the cross-origin middleware from the HTTP configuration.
// With no origins configured every cross-origin request is refused.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	var origins []string
	for _, o := range cfg.CORSAllowOrigins {
		if o == "*" {
			c.AllowAllOrigins = true
			origins = nil
			break
		}
		origins = append(origins, o)
	}
	switch {
	case c.AllowAllOrigins:
	case len(origins) > 0:
		c.AllowOrigins = origins
		c.AllowCredentials = true
	default:
		c.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(c)
}
