// Package services – SubmissionStore
//
// SubmissionStore is the persisted, ordered list of a single visitor's
// submissions. The list is held as one JSON array under a named storage key
// and is always read and written whole. Read failures (missing table, broken
// connection, corrupt JSON) degrade to an empty list; they are logged and
// counted but never returned, so callers see a store that simply looks empty.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/repo"
)

// StorageRepo is the key/value contract the store and the review counter
// need. GetItem must return repo.ErrNotFound for a missing key.
type StorageRepo interface {
	GetItem(ctx context.Context, db *gorm.DB, namespace, key string) (string, error)
	SetItem(ctx context.Context, db *gorm.DB, namespace, key, value string) error
	RemoveItem(ctx context.Context, db *gorm.DB, namespace, key string) error
}

// SubmissionStore reads and writes one namespace's submission list.
type SubmissionStore struct {
	DB        *gorm.DB
	Repo      StorageRepo
	Namespace string
	Key       string
}

// Load returns the stored submissions in insertion order. It returns an empty
// slice when the key is absent or unreadable.
func (s *SubmissionStore) Load(ctx context.Context) []domain.Submission {
	subs, err := s.read(ctx)
	if err != nil {
		s.swallow(ctx, "read", err)
	}
	return subs
}

// read is Load without the swallowing of repository errors. A missing key
// and a corrupt value both read as an empty list with a nil error; the
// corrupt value is logged and is replaced by the next write.
func (s *SubmissionStore) read(ctx context.Context) ([]domain.Submission, error) {
	raw, err := s.Repo.GetItem(ctx, s.DB, s.Namespace, s.Key)
	if errors.Is(err, repo.ErrNotFound) {
		return []domain.Submission{}, nil
	}
	if err != nil {
		return []domain.Submission{}, err
	}

	var subs []domain.Submission
	if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		s.swallow(ctx, "decode", err)
		return []domain.Submission{}, nil
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	return subs, nil
}

// Append adds sub to the end of the stored list. Nothing is written when the
// list cannot be read, so a transient read failure never overwrites stored
// submissions. A failed write leaves the stored list unchanged.
func (s *SubmissionStore) Append(ctx context.Context, sub domain.Submission) error {
	subs, err := s.read(ctx)
	if err != nil {
		storageErrors.WithLabelValues("read").Inc()
		return fmt.Errorf("read submissions: %w", err)
	}
	return s.Save(ctx, append(subs, sub))
}

// Save replaces the stored list with subs.
func (s *SubmissionStore) Save(ctx context.Context, subs []domain.Submission) error {
	b, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("encode submissions: %w", err)
	}
	if err := s.Repo.SetItem(ctx, s.DB, s.Namespace, s.Key, string(b)); err != nil {
		storageErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("write submissions: %w", err)
	}
	return nil
}

// Count returns the number of stored submissions.
func (s *SubmissionStore) Count(ctx context.Context) int {
	return len(s.Load(ctx))
}

// IsAtCapacity reports whether the store holds max or more submissions.
func (s *SubmissionStore) IsAtCapacity(ctx context.Context, max int) bool {
	return s.Count(ctx) >= max
}

// Clear removes the whole list. Clearing an empty store is not an error.
func (s *SubmissionStore) Clear(ctx context.Context) error {
	if err := s.Repo.RemoveItem(ctx, s.DB, s.Namespace, s.Key); err != nil {
		storageErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("clear submissions: %w", err)
	}
	return nil
}

func (s *SubmissionStore) swallow(ctx context.Context, op string, err error) {
	storageErrors.WithLabelValues(op).Inc()
	ctxLogger(ctx).Warn().
		Err(err).
		Str("op", op).
		Str("namespace", s.Namespace).
		Str("key", s.Key).
		Msg("submission store unreadable, treating as empty")
}

// ctxLogger returns the request logger carried by ctx, or the global logger.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
