package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

// CasesStats returns how many cases match f and the latest UpdatedAt among
// them (nil when none match). Handlers derive list ETags from the pair.
func CasesStats(ctx context.Context, db *gorm.DB, f CaseFilter) (count int64, lastChange *time.Time, err error) {
	return changeMarker(func() *gorm.DB {
		return f.apply(db.WithContext(ctx).Model(&domain.Case{}))
	}, "updated_at")
}

// DirectoryStats is CasesStats for a directory collection, optionally
// restricted to a city. Entries are never edited, so CreatedAt marks change.
func DirectoryStats[T DirectoryEntry](ctx context.Context, db *gorm.DB, city string) (count int64, lastChange *time.Time, err error) {
	return changeMarker(func() *gorm.DB {
		return cityScope(db.WithContext(ctx).Model(new(T)), city)
	}, "created_at")
}

// changeMarker counts the scoped rows and reads the newest value of the
// timestamp column col. The latest row is fetched by ordering rather than
// with MAX(), which SQLite would hand back as TEXT.
func changeMarker(scope func() *gorm.DB, col string) (int64, *time.Time, error) {
	var count int64
	if err := scope().Count(&count).Error; err != nil || count == 0 {
		return 0, nil, err
	}

	var latest []time.Time
	if err := scope().Order(col+" DESC").Limit(1).Pluck(col, &latest).Error; err != nil {
		return 0, nil, err
	}
	if len(latest) == 0 {
		return count, nil, nil
	}
	return count, &latest[0], nil
}
