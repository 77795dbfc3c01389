// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the provider
// directory: advocates, law firms, NGOs and volunteers.
//
// The four collections share one shape (append-only registration plus
// paginated listing by city), so the functions are generic over the entry
// type. IDs are assigned by the models' BeforeCreate hooks.
//
// Error semantics:
//   - A second registration with the same email returns ErrDuplicate.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

// DirectoryEntry constrains the generic directory functions to the four
// registered collections.
type DirectoryEntry interface {
	domain.Advocate | domain.LawFirm | domain.NGO | domain.Volunteer
}

// CreateEntry inserts a directory entry. Duplicate emails yield ErrDuplicate.
func CreateEntry[T DirectoryEntry](ctx context.Context, db *gorm.DB, e *T) error {
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListEntriesPage returns entries newest first, optionally restricted to a
// city (case-insensitive).
func ListEntriesPage[T DirectoryEntry](ctx context.Context, db *gorm.DB, city string, offset, limit int) ([]T, error) {
	var out []T
	err := cityScope(db.WithContext(ctx).Model(new(T)), city).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountEntries returns the number of entries, optionally restricted to a city.
func CountEntries[T DirectoryEntry](ctx context.Context, db *gorm.DB, city string) (int64, error) {
	var total int64
	err := cityScope(db.WithContext(ctx).Model(new(T)), city).Count(&total).Error
	return total, err
}

func cityScope(q *gorm.DB, city string) *gorm.DB {
	if c := strings.TrimSpace(city); c != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(c))
	}
	return q
}
