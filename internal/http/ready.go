package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/cache"
	"github.com/tbourn/legal-aid-backend/internal/http/handlers"
	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
)

const readyTimeout = 2 * time.Second

// pinger is implemented by caches with a remote backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// readiness checks the database and, when it has a remote backend, the cache
// concurrently. Any failure answers 503.
func readiness(db *gorm.DB, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), readyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(cctx)
		g.Go(func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(gctx)
		})
		if p, ok := c.(pinger); ok {
			g.Go(func() error { return p.Ping(gctx) })
		}

		if err := g.Wait(); err != nil {
			middleware.LoggerFrom(ctx).Warn().Err(err).Msg("readiness check failed")
			handlers.Fail(ctx, http.StatusServiceUnavailable, handlers.ErrCodeNotReady, "dependencies unavailable")
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
