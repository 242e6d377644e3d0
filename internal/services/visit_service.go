// Package services – VisitService
//
// VisitService counts page loads per visitor and produces the welcome-back
// banner shown to returning visitors. The count and the previous visit time
// live in one JSON record so a single write updates both.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/repo"
)

// VisitService records visits.
type VisitService struct {
	DB   *gorm.DB
	Repo StorageRepo
	// Key is the storage key of the visit record.
	Key string
	// CompanyName appears in the welcome message.
	CompanyName string
	// Now returns the current time; tests override it.
	Now func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewVisitService constructs a VisitService with the "visitInfo" key.
func NewVisitService(db *gorm.DB, r StorageRepo, companyName string) *VisitService {
	if companyName == "" {
		companyName = "Elevate Digital"
	}
	return &VisitService{DB: db, Repo: r, Key: "visitInfo", CompanyName: companyName, Now: time.Now}
}

// Record counts one visit by clientID and reports the previous one. A record
// without a previous visit time starts the count over at 1. Storage failures
// are logged and the visit is then reported as a first visit.
func (s *VisitService) Record(ctx context.Context, clientID string) domain.Visit {
	mu := &s.locks[stripe(clientID)]
	mu.Lock()
	defer mu.Unlock()

	logger := ctxLogger(ctx)
	prev, err := s.load(ctx, clientID)
	if err != nil {
		storageErrors.WithLabelValues("read").Inc()
		logger.Warn().Err(err).Str("namespace", clientID).Msg("visit record unreadable")
	}

	now := s.now()
	next := domain.VisitRecord{Count: 1, LastVisit: now}
	v := domain.Visit{VisitCount: 1}
	if !prev.LastVisit.IsZero() {
		next.Count = max(prev.Count, 0) + 1
		v = domain.Visit{
			Returning:  true,
			VisitCount: next.Count,
			LastVisit:  prev.LastVisit.Format(domain.DateLayout),
		}
		v.Message = fmt.Sprintf("Welcome back to %s! You've visited us %d times. Last visit: %s",
			s.CompanyName, v.VisitCount, v.LastVisit)
	}

	// An unreadable record is left alone rather than reset.
	if err == nil {
		if err := s.save(ctx, clientID, next); err != nil {
			storageErrors.WithLabelValues("write").Inc()
			logger.Error().Err(err).Str("namespace", clientID).Msg("visit record not saved")
		}
	}
	return v
}

// load returns the stored record; a missing or corrupt one is the zero record.
func (s *VisitService) load(ctx context.Context, clientID string) (domain.VisitRecord, error) {
	var rec domain.VisitRecord
	raw, err := s.Repo.GetItem(ctx, s.DB, clientID, s.Key)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return rec, nil
	case err != nil:
		return rec, err
	}
	if jerr := json.Unmarshal([]byte(raw), &rec); jerr != nil {
		storageErrors.WithLabelValues("decode").Inc()
		ctxLogger(ctx).Warn().Err(jerr).Str("namespace", clientID).Msg("visit record corrupt; starting over")
		return domain.VisitRecord{}, nil
	}
	return rec, nil
}

func (s *VisitService) save(ctx context.Context, clientID string, rec domain.VisitRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Repo.SetItem(ctx, s.DB, clientID, s.Key, string(b))
}

func (s *VisitService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
