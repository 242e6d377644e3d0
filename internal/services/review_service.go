// Package services – ReviewService
//
// ReviewService renders the confirmation shown after a visitor submits a
// product review and keeps the visitor's running review counter. Every
// rendered value is passed through a strict bluemonday policy before it is
// placed in the HTML fragment, so user-supplied text can never inject markup.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/repo"
)

const (
	msgNoReview     = "No review data found. Please submit a review first."
	installDateForm = "2006-01-02"
	starFull        = "★"
	starEmpty       = "☆"
)

// ReviewService builds review summaries.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo stores the per-visitor review counter.
	Repo StorageRepo
	// CounterKey is the storage key of the counter.
	CounterKey string

	policy *bluemonday.Policy
	locks  [lockStripes]sync.Mutex
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB, r StorageRepo, counterKey string) *ReviewService {
	if counterKey == "" {
		counterKey = "reviewCount"
	}
	return &ReviewService{DB: db, Repo: r, CounterKey: counterKey, policy: bluemonday.StrictPolicy()}
}

// Summarize renders q and increments clientID's review counter. The counter
// is incremented whether or not q holds a review.
func (s *ReviewService) Summarize(ctx context.Context, clientID string, q domain.ReviewQuery) domain.ReviewSummary {
	sum := s.render(q)
	sum.ReviewCount = s.bump(ctx, clientID)
	return sum
}

func (s *ReviewService) render(q domain.ReviewQuery) domain.ReviewSummary {
	p := s.sanitizer()

	if strings.TrimSpace(q.ProductName) == "" {
		return domain.ReviewSummary{
			Found:   false,
			Message: msgNoReview,
			HTML:    "<p>" + msgNoReview + "</p>",
		}
	}

	rating := ParseRating(q.Rating)
	sum := domain.ReviewSummary{
		Found:         true,
		ProductName:   q.ProductName,
		InstallDate:   FormatInstallDate(q.InstallDate),
		Rating:        rating,
		Stars:         Stars(rating),
		WrittenReview: q.WrittenReview,
		UserName:      q.UserName,
	}
	for _, f := range q.Features {
		if f = strings.TrimSpace(f); f != "" {
			sum.Features = append(sum.Features, f)
		}
	}

	var b strings.Builder
	b.WriteString("<h3>Review Summary</h3>")
	item := func(label, valueHTML string) {
		b.WriteString(`<div class="review-item"><span class="review-label">`)
		b.WriteString(label)
		b.WriteString(`:</span> `)
		b.WriteString(valueHTML)
		b.WriteString(`</div>`)
	}
	value := func(v string) string {
		return `<span class="review-value">` + p.Sanitize(v) + `</span>`
	}

	item("Product", value(sum.ProductName))
	if sum.InstallDate != "" {
		item("Installation Date", value(sum.InstallDate))
	}
	item("Rating", `<span class="review-stars">`+sum.Stars+`</span> `+
		value("("+strconv.Itoa(rating)+" out of "+strconv.Itoa(domain.MaxRating)+")"))
	if len(sum.Features) > 0 {
		item("Useful Features", value(strings.Join(sum.Features, ", ")))
	}
	if sum.WrittenReview != "" {
		item("Written Review", value(sum.WrittenReview))
	}
	if sum.UserName != "" {
		item("Submitted by", value(sum.UserName))
	}
	sum.HTML = b.String()
	return sum
}

// bump increments and returns the counter. Storage failures are logged; the
// returned value is then the in-memory increment.
func (s *ReviewService) bump(ctx context.Context, clientID string) int {
	mu := s.lock(clientID)
	mu.Lock()
	defer mu.Unlock()

	n := 0
	raw, err := s.Repo.GetItem(ctx, s.DB, clientID, s.CounterKey)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		storageErrors.WithLabelValues("read").Inc()
		ctxLogger(ctx).Warn().Err(err).Str("namespace", clientID).Msg("review counter unreadable")
	default:
		if v, perr := strconv.Atoi(strings.TrimSpace(raw)); perr == nil && v > 0 {
			n = v
		}
	}
	n++

	if err := s.Repo.SetItem(ctx, s.DB, clientID, s.CounterKey, strconv.Itoa(n)); err != nil {
		storageErrors.WithLabelValues("write").Inc()
		ctxLogger(ctx).Error().Err(err).Str("namespace", clientID).Msg("review counter not saved")
	}
	return n
}

func (s *ReviewService) sanitizer() *bluemonday.Policy {
	if s.policy == nil {
		s.policy = bluemonday.StrictPolicy()
	}
	return s.policy
}

func (s *ReviewService) lock(clientID string) *sync.Mutex {
	return &s.locks[stripe(clientID)]
}

// ParseRating reads the leading integer of raw and clamps it to
// [0, domain.MaxRating]. Unparsable input yields 0.
func ParseRating(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	switch {
	case n < 0:
		return 0
	case n > domain.MaxRating:
		return domain.MaxRating
	}
	return n
}

// Stars renders n filled stars followed by empty ones up to the maximum.
func Stars(n int) string {
	return strings.Repeat(starFull, n) + strings.Repeat(starEmpty, domain.MaxRating-n)
}

// FormatInstallDate turns "2006-01-02" into the long date form. Values that
// do not parse are returned trimmed but otherwise unchanged.
func FormatInstallDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(installDateForm, raw)
	if err != nil {
		return raw
	}
	return t.Format(domain.DateLayout)
}
