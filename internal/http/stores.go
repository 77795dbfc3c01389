package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/http/handlers"
	"github.com/tbourn/legal-aid-backend/internal/repo"
)

// caseStore satisfies services.CaseRepo with the repo package functions.
type caseStore struct{}

func (caseStore) CreateCase(ctx context.Context, db *gorm.DB, in repo.NewCase) (*domain.Case, error) {
	return repo.CreateCase(ctx, db, in)
}

func (caseStore) GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error) {
	return repo.GetCase(ctx, db, id)
}

func (caseStore) ListCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) ([]domain.Case, error) {
	return repo.ListCases(ctx, db, f)
}

func (caseStore) CountCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (int64, error) {
	return repo.CountCases(ctx, db, f)
}

func (caseStore) ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error) {
	return repo.ListCasesPage(ctx, db, f, offset, limit)
}

func (caseStore) UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, status domain.CaseStatus) error {
	return repo.UpdateCaseStatus(ctx, db, id, status)
}

func (caseStore) AdvanceCaseStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.CaseStatus) error {
	return repo.AdvanceCaseStatus(ctx, db, id, from, to)
}

func (caseStore) GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, userID, scope, key, now)
}

func (caseStore) CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, userID, scope, key, resourceID, status, ttl)
}

// directoryStore binds the generic directory functions to one collection.
type directoryStore[T repo.DirectoryEntry] struct{}

func (directoryStore[T]) CreateEntry(ctx context.Context, db *gorm.DB, e *T) error {
	return repo.CreateEntry(ctx, db, e)
}

func (directoryStore[T]) ListEntriesPage(ctx context.Context, db *gorm.DB, city string, offset, limit int) ([]T, error) {
	return repo.ListEntriesPage[T](ctx, db, city, offset, limit)
}

func (directoryStore[T]) CountEntries(ctx context.Context, db *gorm.DB, city string) (int64, error) {
	return repo.CountEntries[T](ctx, db, city)
}

type dashboardStore struct{}

func (dashboardStore) CountCasesByStatus(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (domain.StatusCounts, error) {
	return repo.CountCasesByStatus(ctx, db, f)
}

func (dashboardStore) CountCasesByCategory(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (map[domain.CaseCategory]int64, error) {
	return repo.CountCasesByCategory(ctx, db, f)
}

func (dashboardStore) ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error) {
	return repo.ListCasesPage(ctx, db, f, offset, limit)
}

func (dashboardStore) CountAdvocates(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountEntries[domain.Advocate](ctx, db, "")
}

func (dashboardStore) CountVolunteers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountEntries[domain.Volunteer](ctx, db, "")
}

// directoryStats feeds the directory list ETag.
func directoryStats(db *gorm.DB) handlers.DirectoryStatsFunc {
	return func(ctx context.Context, collection, city string) (int64, *time.Time, error) {
		switch collection {
		case handlers.DirectoryAdvocates:
			return repo.DirectoryStats[domain.Advocate](ctx, db, city)
		case handlers.DirectoryLawFirms:
			return repo.DirectoryStats[domain.LawFirm](ctx, db, city)
		case handlers.DirectoryNGOs:
			return repo.DirectoryStats[domain.NGO](ctx, db, city)
		case handlers.DirectoryVolunteers:
			return repo.DirectoryStats[domain.Volunteer](ctx, db, city)
		}
		return 0, nil, fmt.Errorf("unknown directory %q", collection)
	}
}

// idempotencyLookup reports live idempotency records to the middleware.
func idempotencyLookup(db *gorm.DB) func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}
