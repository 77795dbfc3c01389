// Idempotency records back safe retries of POST /cases: the first request
// with a given (user, scope, key) stores the created resource ID, and
// replays within the TTL return that resource instead of creating another.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

// ErrDuplicate reports a unique key clash: an idempotency record for the same
// (user_id, scope, key) or a directory entry with an already registered email.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the unexpired record for (userID, scope, key) at now,
// or ErrNotFound. Blank scopes and keys never match.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(scope) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND key = ? AND expires_at > ?", userID, scope, key, now).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency stores resourceID under (userID, scope, key) for ttl,
// replacing an expired record for the same key. A live record, such as one
// just committed by a concurrent request, yields ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	err := db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND key = ? AND expires_at <= ?", userID, scope, key, now).
		Delete(&domain.Idempotency{}).Error
	if err != nil {
		return nil, err
	}
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		UserID:     userID,
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	err = db.WithContext(ctx).Create(rec).Error
	switch {
	case err == nil:
		return rec, nil
	case isUniqueViolation(err):
		return nil, ErrDuplicate
	default:
		return nil, err
	}
}

// PurgeExpiredIdempotency deletes records that expired at or before now and
// returns how many were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation recognises UNIQUE failures whether or not the dialector
// translated them to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
