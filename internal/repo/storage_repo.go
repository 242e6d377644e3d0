package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// Values are opaque strings read and written whole; encoding and the
// submission rules live in the services package. Errors other than
// ErrNotFound are the raw GORM errors.

// ErrNotFound is returned when a storage entry does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// GetItem returns the value stored under (namespace, key).
func GetItem(ctx context.Context, db *gorm.DB, namespace, key string) (string, error) {
	var e domain.StorageEntry
	err := db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

// SetItem stores value under (namespace, key), replacing any previous value.
func SetItem(ctx context.Context, db *gorm.DB, namespace, key, value string) error {
	now := time.Now().UTC()
	e := &domain.StorageEntry{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(e).Error
}

// RemoveItem deletes the entry under (namespace, key). A missing entry is not
// an error.
func RemoveItem(ctx context.Context, db *gorm.DB, namespace, key string) error {
	return db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&domain.StorageEntry{}).Error
}
