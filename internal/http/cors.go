package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/config"
	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
)

// corsPolicy allows the listed origins, or any origin when none are
// configured. Credentials are never allowed; callers identify themselves
// with headers.
func corsPolicy(c config.CORSConfig) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Accept-Language", "If-None-Match",
			middleware.HeaderUserID, middleware.HeaderUserRole, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{
			middleware.HeaderRequestID, middleware.HeaderIdempotencyReplayed,
			"Content-Language", "ETag", "Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = c.AllowedOrigins
	}
	return cors.New(cfg)
}
