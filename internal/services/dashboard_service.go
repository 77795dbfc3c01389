// Package services – DashboardService
//
// DashboardService computes the role dashboards (advocate, NGO, law firm,
// volunteer) from the case store and the directory. Each kind is its own
// record type in package domain. Results are cached for TTL when a cache is
// configured; CaseService invalidates them whenever case counts change.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/cache"
	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/observability"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/session"
)

// DashboardRepo defines the aggregate queries required by DashboardService.
type DashboardRepo interface {
	CountCasesByStatus(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (domain.StatusCounts, error)
	CountCasesByCategory(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (map[domain.CaseCategory]int64, error)
	ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error)
	CountAdvocates(ctx context.Context, db *gorm.DB) (int64, error)
	CountVolunteers(ctx context.Context, db *gorm.DB) (int64, error)
}

// DashboardCacheKey is the cache key of one dashboard kind.
func DashboardCacheKey(k domain.DashboardKind) string { return "dashboard:" + string(k) }

// DashboardCacheKeys lists the cache keys of every dashboard kind.
func DashboardCacheKeys() []string {
	kinds := []domain.DashboardKind{domain.DashboardAdvocate, domain.DashboardNGO, domain.DashboardLawFirm, domain.DashboardVolunteer}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = DashboardCacheKey(k)
	}
	return keys
}

// DashboardService builds dashboards.
type DashboardService struct {
	DB   *gorm.DB
	Repo DashboardRepo

	Cache cache.Cache
	// TTL of cached dashboards; zero disables caching.
	TTL time.Duration
	// RecentLimit caps the case lists shown on a dashboard.
	RecentLimit int

	Now         func() time.Time
	LabelLocale language.Tag
}

// NewDashboardService constructs a DashboardService without caching.
func NewDashboardService(db *gorm.DB, r DashboardRepo) *DashboardService {
	return &DashboardService{
		DB:          db,
		Repo:        r,
		Cache:       cache.Nop{},
		RecentLimit: 10,
		Now:         func() time.Time { return time.Now().UTC() },
		LabelLocale: language.English,
	}
}

// Get returns the dashboard of the given kind, from cache when fresh.
// Dashboards list other requesters' cases, so only roles that see every case
// may read them; anyone else gets ErrForbidden.
func (s *DashboardService) Get(ctx context.Context, kind domain.DashboardKind) (d domain.Dashboard, err error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("dashboard.kind", string(kind))))
	defer func() { observability.Finish(span, err) }()

	if !kind.Valid() {
		return nil, ErrUnknownDashboard
	}
	if !seesAllCases(session.From(ctx).Role) {
		return nil, ErrForbidden
	}
	key := DashboardCacheKey(kind)
	if s.TTL > 0 && s.Cache != nil {
		hit, cerr := s.cached(ctx, kind, key)
		if cerr != nil {
			log.Warn().Err(cerr).Str("key", key).Msg("dashboard cache read failed")
		}
		if hit != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return hit, nil
		}
	}

	d, err = s.build(ctx, kind)
	if err != nil {
		return nil, err
	}
	if s.TTL > 0 && s.Cache != nil {
		if cerr := s.Cache.Set(ctx, key, d, s.TTL); cerr != nil {
			log.Warn().Err(cerr).Str("key", key).Msg("dashboard cache write failed")
		}
	}
	return d, nil
}

func (s *DashboardService) cached(ctx context.Context, kind domain.DashboardKind, key string) (domain.Dashboard, error) {
	switch kind {
	case domain.DashboardAdvocate:
		return loadCached[domain.AdvocateDashboard](ctx, s.Cache, key)
	case domain.DashboardNGO:
		return loadCached[domain.NGODashboard](ctx, s.Cache, key)
	case domain.DashboardLawFirm:
		return loadCached[domain.LawFirmDashboard](ctx, s.Cache, key)
	case domain.DashboardVolunteer:
		return loadCached[domain.VolunteerDashboard](ctx, s.Cache, key)
	}
	return nil, nil
}

func loadCached[T domain.Dashboard](ctx context.Context, c cache.Cache, key string) (domain.Dashboard, error) {
	var v T
	ok, err := c.Get(ctx, key, &v)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

func (s *DashboardService) build(ctx context.Context, kind domain.DashboardKind) (domain.Dashboard, error) {
	now := s.now()
	all := repo.CaseFilter{}

	if kind == domain.DashboardVolunteer {
		st, err := s.Repo.CountCasesByStatus(ctx, s.DB, all)
		if err != nil {
			return nil, err
		}
		queue, err := s.recent(ctx, repo.CaseFilter{Status: domain.StatusNew})
		if err != nil {
			return nil, err
		}
		return domain.VolunteerDashboard{Kind: kind, GeneratedAt: now, NewCases: st.New, Queue: queue}, nil
	}

	st, err := s.Repo.CountCasesByStatus(ctx, s.DB, all)
	if err != nil {
		return nil, err
	}
	byCat, err := s.byCategory(ctx)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.DashboardAdvocate:
		open, err := s.recent(ctx, repo.CaseFilter{Status: domain.StatusInProgress})
		if err != nil {
			return nil, err
		}
		return domain.AdvocateDashboard{Kind: kind, GeneratedAt: now, Status: st, OpenCases: open, ByCategory: byCat}, nil

	case domain.DashboardNGO:
		volunteers, err := s.Repo.CountVolunteers(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		resolved, err := s.recent(ctx, repo.CaseFilter{Status: domain.StatusResolved})
		if err != nil {
			return nil, err
		}
		return domain.NGODashboard{
			Kind:           kind,
			GeneratedAt:    now,
			Status:         st,
			ByCategory:     byCat,
			VolunteerCount: volunteers,
			ResolutionRate: resolutionRate(st),
			RecentResolved: resolved,
		}, nil

	default: // law firm
		advocates, err := s.Repo.CountAdvocates(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		recent, err := s.recent(ctx, all)
		if err != nil {
			return nil, err
		}
		return domain.LawFirmDashboard{Kind: kind, GeneratedAt: now, Status: st, ByCategory: byCat, AdvocateCount: advocates, RecentCases: recent}, nil
	}
}

func (s *DashboardService) recent(ctx context.Context, f repo.CaseFilter) ([]domain.CaseSummary, error) {
	limit := s.RecentLimit
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Repo.ListCasesPage(ctx, s.DB, f, 0, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CaseSummary, len(rows))
	for i, c := range rows {
		out[i] = domain.CaseSummary{ID: c.ID, Category: c.Category, Status: c.Status, SubmittedAt: c.SubmittedAt}
	}
	return out, nil
}

// byCategory returns one bucket per known category in display order,
// including empty ones.
func (s *DashboardService) byCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.Repo.CountCasesByCategory(ctx, s.DB, repo.CaseFilter{})
	if err != nil {
		return nil, err
	}
	caser := cases.Title(s.LabelLocale)
	out := make([]domain.CategoryCount, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		out = append(out, domain.CategoryCount{
			Category: cat,
			Label:    caser.String(strings.ReplaceAll(string(cat), "_", " ")),
			Count:    counts[cat],
		})
	}
	return out, nil
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func resolutionRate(st domain.StatusCounts) float64 {
	if st.Total() == 0 {
		return 0
	}
	return float64(st.Resolved) / float64(st.Total())
}
