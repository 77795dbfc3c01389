// Package handlers exposes the REST endpoints of the legal-aid portal:
//
//   - /cases            case intake, listing, lookup and status updates
//   - /actions/*        AI drafting actions (legal advice, eBrief, breach
//     advice, FIR draft)
//   - /directory/*      advocate, law firm, NGO and volunteer registries
//   - /dashboards/:kind role dashboards
//   - /templates        static legal document templates
//
// Handlers are transport-thin: they bind input, call application services
// through the interfaces below, and translate results into HTTP responses.
// The caller (user, role, locale) travels in the request context, installed
// by middleware.Session.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/legal-aid-backend/internal/doctemplates"
	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CaseService defines the case store operations consumed by HTTP handlers.
type CaseService interface {
	// CreateIdempotent stores a case; a non-empty key replays a prior result.
	CreateIdempotent(ctx context.Context, in services.CaseInput, key string) (*domain.Case, bool, error)
	// Get returns a case visible to the caller.
	Get(ctx context.Context, id string) (*domain.Case, error)
	// ListPage returns a page of cases, newest first, and the total count.
	ListPage(ctx context.Context, f services.CaseListFilter, page, pageSize int) ([]domain.Case, int64, error)
	// Filter resolves the store filter ListPage would use for f.
	Filter(ctx context.Context, f services.CaseListFilter) (repo.CaseFilter, error)
	// UpdateStatus changes a case's status and returns the updated case.
	UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error)
}

// CaseStatsFunc returns the row count and latest update time of the cases
// matching f. It backs the list ETag; nil disables conditional responses.
type CaseStatsFunc func(ctx context.Context, f repo.CaseFilter) (int64, *time.Time, error)

// DirectoryStatsFunc returns the entry count and latest CreatedAt of a
// directory collection in a city ("" for all). It backs the directory list
// ETag; nil disables conditional responses.
type DirectoryStatsFunc func(ctx context.Context, collection, city string) (int64, *time.Time, error)

// DraftingService runs the AI drafting actions.
type DraftingService interface {
	Run(ctx context.Context, templateID string, raw map[string]any) services.ActionResult
}

// Directory registers and lists one kind of provider.
type Directory[T any] interface {
	Register(ctx context.Context, e *T) (*T, error)
	ListPage(ctx context.Context, city string, page, pageSize int) ([]T, int64, error)
}

// DashboardService builds role dashboards.
type DashboardService interface {
	Get(ctx context.Context, kind domain.DashboardKind) (domain.Dashboard, error)
}

// TemplateCatalog serves document templates.
type TemplateCatalog interface {
	List(category string) []doctemplates.Summary
	Get(id string) (doctemplates.Template, error)
}

//
// Handler wiring
//

// Deps groups the services the handlers depend on.
type Deps struct {
	Cases      CaseService
	CaseStats  CaseStatsFunc
	Drafting   DraftingService
	Dashboards DashboardService
	Templates  TemplateCatalog

	Advocates  Directory[domain.Advocate]
	LawFirms   Directory[domain.LawFirm]
	NGOs       Directory[domain.NGO]
	Volunteers Directory[domain.Volunteer]

	DirectoryStats DirectoryStatsFunc
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	caseSvc   CaseService
	caseStats CaseStatsFunc
	drafting  DraftingService
	dashSvc   DashboardService
	templates TemplateCatalog

	directories map[string]directoryEndpoint
	dirStats    DirectoryStatsFunc
}

// New constructs Handlers bound to the given services.
func New(d Deps) *Handlers {
	h := &Handlers{
		caseSvc:     d.Cases,
		caseStats:   d.CaseStats,
		drafting:    d.Drafting,
		dashSvc:     d.Dashboards,
		templates:   d.Templates,
		directories: make(map[string]directoryEndpoint, 4),
		dirStats:    d.DirectoryStats,
	}
	if d.Advocates != nil {
		h.directories[DirectoryAdvocates] = directoryOf(d.Advocates)
	}
	if d.LawFirms != nil {
		h.directories[DirectoryLawFirms] = directoryOf(d.LawFirms)
	}
	if d.NGOs != nil {
		h.directories[DirectoryNGOs] = directoryOf(d.NGOs)
	}
	if d.Volunteers != nil {
		h.directories[DirectoryVolunteers] = directoryOf(d.Volunteers)
	}
	return h
}
