package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/cache"
	"github.com/tbourn/legal-aid-backend/internal/config"
	"github.com/tbourn/legal-aid-backend/internal/doctemplates"
	"github.com/tbourn/legal-aid-backend/internal/genai"
	httpapi "github.com/tbourn/legal-aid-backend/internal/http"
	"github.com/tbourn/legal-aid-backend/internal/lawlib"
	"github.com/tbourn/legal-aid-backend/internal/notify"
	"github.com/tbourn/legal-aid-backend/internal/observability"
	"github.com/tbourn/legal-aid-backend/internal/prompt"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/schema"
	"github.com/tbourn/legal-aid-backend/internal/sysutil"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API on $PORT. The schema is migrated on startup.
SIGINT or SIGTERM drains in-flight requests before exiting.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.ConfigureLogging(nil, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore(db)
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			return fmt.Errorf("gorm tracing: %w", err)
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	deps, cleanup, err := buildDeps(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		purgeIdempotency(gctx, db, purgeInterval)
		return nil
	})
	return g.Wait()
}

// purgeIdempotency drops expired idempotency records every interval until
// ctx is cancelled. Failures are logged and retried on the next tick.
func purgeIdempotency(ctx context.Context, db *gorm.DB, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("idempotency records purged")
			}
		}
	}
}

// buildDeps assembles everything the router needs besides the database.
// The returned cleanup releases the cache connection.
func buildDeps(ctx context.Context, cfg config.Config, db *gorm.DB) (httpapi.Deps, func(), error) {
	cleanup := func() {}

	model, err := genai.NewModel(genai.Settings{
		Provider: cfg.GenAI.Provider,
		Model:    cfg.GenAI.Model,
		APIKey:   cfg.GenAI.APIKey,
		BaseURL:  cfg.GenAI.BaseURL,
	})
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	gen, err := genai.NewGenerator(model, schema.MustRegistry(), prompt.MustLoad(), genai.Options{
		Timeout:    cfg.GenAI.Timeout,
		MaxRetries: cfg.GenAI.MaxRetries,
		Backoff:    cfg.GenAI.RetryBackoff,
		MaxBackoff: config.MaxRetryBackoff,
	})
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}

	lib, err := lawlib.Load(cfg.LawLibraryPath)
	if err != nil {
		return httpapi.Deps{}, cleanup, fmt.Errorf("law library: %w", err)
	}

	tpls, err := doctemplates.Load()
	if err != nil {
		return httpapi.Deps{}, cleanup, fmt.Errorf("document templates: %w", err)
	}

	deps := httpapi.Deps{
		DB:        db,
		Generator: gen,
		Templates: tpls,
		Library:   lib,
	}

	if cfg.Redis.Addr != "" {
		rc := cache.NewRedis(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "legalaid:",
		})
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable; dashboards will be computed per request")
		}
		deps.Cache = rc
		cleanup = func() { _ = rc.Close() }
	}

	if cfg.Notify.Enabled {
		n, err := notify.NewAWS(ctx, notify.Config{
			Region:    cfg.Notify.Region,
			EmailFrom: cfg.Notify.EmailFrom,
			SMS:       cfg.Notify.SMS,
		})
		if err != nil {
			cleanup()
			return httpapi.Deps{}, func() {}, err
		}
		deps.Notifier = n
	}

	log.Info().
		Str("provider", cfg.GenAI.Provider).
		Bool("cache", deps.Cache != nil).
		Bool("notify", deps.Notifier != nil).
		Msg("dependencies ready")
	return deps, cleanup, nil
}

func openStore(sc config.StoreConfig) (*gorm.DB, error) {
	target := sc.Path
	if sc.Driver == "postgres" {
		target = sc.DSN
	}
	db, err := repo.Open(sc.Driver, target)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", sc.Driver, err)
	}
	return db, nil
}

func closeStore(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
