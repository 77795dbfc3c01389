// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Case model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic beyond the
// write-boundary checks that keep malformed rows out of the table.
//
// Error semantics:
//   - When a case is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Rows failing the write-boundary checks return ErrInvalid (wrapped).
//   - A conditional status update that lost a race returns ErrConflict.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateCase(ctx, db, in) -> *domain.Case, error
//   - GetCase(ctx, db, id) -> *domain.Case, error
//   - ListCases(ctx, db, filter) -> []domain.Case, error
//   - CountCases(ctx, db, filter) -> (int64, error)
//   - ListCasesPage(ctx, db, filter, offset, limit) -> []domain.Case, error
//   - UpdateCaseStatus(ctx, db, id, status) -> error
//   - AdvanceCaseStatus(ctx, db, id, from, to) -> error
//   - CountCasesByStatus / CountCasesByCategory for dashboards.
//
// Usage:
//
//	c, err := repo.GetCase(ctx, db, id)
//	if errors.Is(err, repo.ErrNotFound) {
//	    // handle missing
//	} else if err != nil {
//	    // handle DB failure
//	}
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrInvalid marks a row rejected before it reached the database.
	ErrInvalid = errors.New("invalid record")
	// ErrConflict marks a conditional update whose precondition no longer holds.
	ErrConflict = errors.New("conflict")
)

// NewCase carries the caller-supplied fields of a case submission.
type NewCase struct {
	RequesterID string
	FullName    string
	Contact     string
	Category    domain.CaseCategory
	Description string
}

// CaseFilter narrows case listings. Zero values mean "any".
type CaseFilter struct {
	RequesterID string
	Category    domain.CaseCategory
	Status      domain.CaseStatus
}

func (f CaseFilter) apply(q *gorm.DB) *gorm.DB {
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func validateNewCase(in NewCase) error {
	if strings.TrimSpace(in.RequesterID) == "" {
		return fmt.Errorf("%w: requester is required", ErrInvalid)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, in.Category)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < domain.MinDescriptionLen {
		return fmt.Errorf("%w: description shorter than %d characters", ErrInvalid, domain.MinDescriptionLen)
	}
	return nil
}

// CreateCase validates and inserts a new case with status "new". The ID is a
// random UUID and SubmittedAt is set to UTC now.
func CreateCase(ctx context.Context, db *gorm.DB, in NewCase) (*domain.Case, error) {
	if err := validateNewCase(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Case{
		ID:          uuid.NewString(),
		RequesterID: in.RequesterID,
		FullName:    strings.TrimSpace(in.FullName),
		Contact:     strings.TrimSpace(in.Contact),
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.StatusNew,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCase fetches a single case by ID, or ErrNotFound if missing.
func GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error) {
	var c domain.Case
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCases returns every case matching f, most recently submitted first.
// Each call re-reads the table.
func ListCases(ctx context.Context, db *gorm.DB, f CaseFilter) ([]domain.Case, error) {
	var out []domain.Case
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).
		Order("submitted_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// CountCases returns the number of cases matching f.
func CountCases(ctx context.Context, db *gorm.DB, f CaseFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).Count(&total).Error
	return total, err
}

// ListCasesPage is ListCases with offset/limit. Use CountCases for the total.
func ListCasesPage(ctx context.Context, db *gorm.DB, f CaseFilter, offset, limit int) ([]domain.Case, error) {
	var out []domain.Case
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).
		Order("submitted_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateCaseStatus writes status unconditionally. It returns ErrNotFound when
// no row has the given id.
func UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, status domain.CaseStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	res := db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdvanceCaseStatus moves a case from "from" to "to" only if it is still in
// "from". It returns ErrConflict when another writer changed it first, and
// ErrNotFound when the case does not exist.
func AdvanceCaseStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.CaseStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, to)
	}
	res := db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := GetCase(ctx, db, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// CountCasesByStatus aggregates case totals per status for the given filter
// (its Status field is ignored).
func CountCasesByStatus(ctx context.Context, db *gorm.DB, f CaseFilter) (domain.StatusCounts, error) {
	f.Status = ""
	var rows []struct {
		Status domain.CaseStatus
		N      int64
	}
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.StatusCounts{}, err
	}
	var out domain.StatusCounts
	for _, r := range rows {
		switch r.Status {
		case domain.StatusNew:
			out.New = r.N
		case domain.StatusInProgress:
			out.InProgress = r.N
		case domain.StatusResolved:
			out.Resolved = r.N
		}
	}
	return out, nil
}

// CountCasesByCategory returns per-category totals keyed by category.
func CountCasesByCategory(ctx context.Context, db *gorm.DB, f CaseFilter) (map[domain.CaseCategory]int64, error) {
	f.Category = ""
	var rows []struct {
		Category domain.CaseCategory
		N        int64
	}
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).
		Select("category, COUNT(*) AS n").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.CaseCategory]int64, len(rows))
	for _, r := range rows {
		out[r.Category] = r.N
	}
	return out, nil
}
