// Package httpapi assembles the Gin engine: the middleware chain, the
// service graph and the /api/v1 routes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/docs"
	"github.com/tbourn/legal-aid-backend/internal/cache"
	"github.com/tbourn/legal-aid-backend/internal/config"
	"github.com/tbourn/legal-aid-backend/internal/doctemplates"
	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/http/handlers"
	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
	"github.com/tbourn/legal-aid-backend/internal/lawlib"
	"github.com/tbourn/legal-aid-backend/internal/notify"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/schema"
	"github.com/tbourn/legal-aid-backend/internal/services"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators built at startup. Only DB and Generator are
// required; each nil optional turns its feature off.
type Deps struct {
	DB        *gorm.DB
	Generator services.Generator

	Templates *doctemplates.Catalog // unmounts /templates when nil
	Library   lawlib.Library        // no citations when nil
	Cache     cache.Cache           // dashboards uncached when nil
	Notifier  notify.Notifier       // no acknowledgements when nil
}

// RegisterRoutes installs the middleware chain and every endpoint on r.
//
// The order is significant. Tracing and the request ID come first so that
// everything after can log and span with them. The session precedes the
// logger and the limiters, which key on the caller. Idempotency runs before
// the limiters so that replays are not charged.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := cfg.APIBasePath
	if base == "/" {
		base = ""
	}

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.Session(),
		middleware.RedactingLogger(middleware.RedactOptions{MaskHeaders: []string{"X-API-Key"}}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger/"})),
		middleware.Metrics(),
		middleware.Idempotency(middleware.IdempotencyOptions{
			Scopes: map[string]string{base + "/cases": services.CaseCreateScope},
			Lookup: idempotencyLookup(d.DB),
		}),
		middleware.NewLimiter(middleware.LimitOptions{Name: "api", RPS: cfg.RateRPS, Burst: cfg.RateBurst}).Handler(),
		corsPolicy(cfg.CORS),
		// Cases and drafts carry personal data and must not be cached.
		middleware.SecurityHeaders(middleware.SecurityOptions{
			EnableHSTS:        cfg.Security.EnableHSTS,
			HSTSMaxAge:        cfg.Security.HSTSMaxAge,
			EnablePolicy:      true,
			NoStorePrefixes:   []string{base + "/cases", base + "/actions"},
			CSPExemptPrefixes: []string{"/swagger/"},
		}),
	)

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", readiness(d.DB, d.Cache))
	r.GET("/metrics", middleware.MetricsHandler())
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = base
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlerDeps(d, cfg))
	actionLimit := middleware.NewLimiter(middleware.LimitOptions{Name: "actions", RPS: cfg.AIRateRPS, Burst: cfg.AIRateBurst})

	api := groupWithPrefix(r, base)
	api.POST("/cases", h.CreateCase)
	api.GET("/cases", h.ListCases)
	api.GET("/cases/:id", h.GetCase)
	api.PATCH("/cases/:id/status", h.UpdateCaseStatus)

	actions := api.Group("/actions", actionLimit.Handler())
	actions.POST("/legal-advice", h.LegalAdvice)
	actions.POST("/ebrief", h.EBrief)
	actions.POST("/breach-advice", h.BreachAdvice)
	actions.POST("/fir-draft", h.FIRDraft)

	api.POST("/directory/:type", h.RegisterDirectoryEntry)
	api.GET("/directory/:type", h.ListDirectory)
	api.GET("/dashboards/:kind", h.GetDashboard)
	if d.Templates != nil {
		api.GET("/templates", h.ListTemplates)
		api.GET("/templates/:id", h.GetTemplate)
	}
}

// handlerDeps builds the service graph behind the handlers.
func handlerDeps(d Deps, cfg config.Config) handlers.Deps {
	db := d.DB
	dash := d.Cache
	if dash == nil {
		dash = cache.Nop{}
	}

	cases := services.NewCaseService(db, caseStore{})
	cases.StrictTransitions = cfg.StrictStatusTransitions
	cases.Dashboards = dash
	cases.Notifier = d.Notifier
	if cfg.IdempotencyTTL > 0 {
		cases.IdempotencyTTL = cfg.IdempotencyTTL
	}

	drafting := services.NewDraftingService(schema.MustRegistry(), d.Generator, cases, d.Library)
	if cfg.LawTopK > 0 {
		drafting.LawTopK = cfg.LawTopK
	}
	if cfg.LawMatchThreshold > 0 {
		drafting.LawThreshold = cfg.LawMatchThreshold
	}

	dashboards := services.NewDashboardService(db, dashboardStore{})
	dashboards.Cache = dash
	dashboards.TTL = cfg.Redis.TTL

	hd := handlers.Deps{
		Cases: cases,
		CaseStats: func(ctx context.Context, f repo.CaseFilter) (int64, *time.Time, error) {
			return repo.CasesStats(ctx, db, f)
		},
		Drafting:       drafting,
		Dashboards:     dashboards,
		Advocates:      services.NewAdvocateDirectory(db, directoryStore[domain.Advocate]{}),
		LawFirms:       services.NewLawFirmDirectory(db, directoryStore[domain.LawFirm]{}),
		NGOs:           services.NewNGODirectory(db, directoryStore[domain.NGO]{}),
		Volunteers:     services.NewVolunteerDirectory(db, directoryStore[domain.Volunteer]{}),
		DirectoryStats: directoryStats(db),
	}
	if d.Templates != nil {
		hd.Templates = d.Templates
	}
	return hd
}

// limitBody caps request bodies; reads past maxBytes fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "/" {
		prefix = ""
	}
	return r.Group(prefix)
}
