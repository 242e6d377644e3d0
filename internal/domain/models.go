package domain

import "time"

// StorageEntry is one persisted key/value pair inside a client namespace.
// Every visitor of the site owns a namespace, and every namespace behaves
// like a browser's local storage: values are opaque strings addressed by key
// and are always read and written whole.
//
// Fields:
//   - Namespace: client identity the entry belongs to (part of the primary key).
//   - Key: storage key, e.g. "formSubmissions" (part of the primary key).
//   - Value: opaque payload, JSON for the submission list.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM; UpdatedAt drives ETags.
type StorageEntry struct {
	Namespace string    `json:"namespace"  gorm:"type:varchar(128);primaryKey"`
	Key       string    `json:"key"        gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value"      gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// TableName returns the database table name for StorageEntry.
func (StorageEntry) TableName() string { return "storage_entries" }
