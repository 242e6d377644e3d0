package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// EntryStats reports whether (namespace, key) has a row and when it last
// changed. The HTTP layer derives the submission list ETag from it. A
// missing entry yields (false, nil, nil).
func EntryStats(ctx context.Context, db *gorm.DB, namespace, key string) (bool, *time.Time, error) {
	var stamps []time.Time
	err := db.WithContext(ctx).
		Model(&domain.StorageEntry{}).
		Where("namespace = ? AND key = ?", namespace, key).
		Limit(1).
		Pluck("updated_at", &stamps).Error
	if err != nil || len(stamps) == 0 {
		return false, nil, err
	}
	return true, &stamps[0], nil
}
