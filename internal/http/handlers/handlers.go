// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind input, resolve the visitor
// namespace, call the application services, and translate outcomes into
// HTTP responses. Every stateful endpoint is scoped to the namespace resolved
// by middleware.ClientIdentity.
package handlers

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/http/middleware"
	"github.com/tbourn/go-contact-backend/internal/services"
	"github.com/tbourn/go-contact-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SubmissionService defines the contact form operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type SubmissionService interface {
	// Submit runs one submit attempt and reports its terminal state.
	Submit(ctx context.Context, clientID string, in domain.FormInput) services.Outcome
	// List returns the visitor's submissions in insertion order.
	List(ctx context.Context, clientID string) []domain.Submission
	// Find returns one submission by id.
	Find(ctx context.Context, clientID string, id int64) (*domain.Submission, error)
	// Capacity reports the stored count, the ceiling and whether it is reached.
	Capacity(ctx context.Context, clientID string) (count, max int, full bool)
	// CapacityMessage is the user message shown once the ceiling is reached.
	CapacityMessage() string
	// Clear empties the visitor's store.
	Clear(ctx context.Context, clientID string) error
	// Stats renders the plain-text statistics summary.
	Stats(ctx context.Context, clientID string) string
	// ValidateField checks one field value on its own.
	ValidateField(field, value string) (string, error)
	// Services returns the selectable services in catalog order.
	Services() []domain.Service
}

// ReviewService renders review confirmations.
type ReviewService interface {
	// Summarize renders q and bumps the visitor's review counter.
	Summarize(ctx context.Context, clientID string, q domain.ReviewQuery) domain.ReviewSummary
}

// VisitService counts page loads per visitor.
type VisitService interface {
	Record(ctx context.Context, clientID string) domain.Visit
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for submissions, reviews and the
// service catalog.
type Handlers struct {
	subSvc SubmissionService
	revSvc ReviewService

	// Visits backs the visit counter; the endpoint answers 404 when nil.
	Visits VisitService

	// IdempotencyTTL bounds how long an Idempotency-Key replays its
	// submission. Zero means 24h.
	IdempotencyTTL time.Duration

	// idemLocks serialize submits that share a (client, key) pair.
	idemLocks [idemStripes]sync.Mutex
}

const idemStripes = 64

func (h *Handlers) idemLock(clientID, key string) *sync.Mutex {
	f := fnv.New32a()
	_, _ = f.Write([]byte(clientID))
	_, _ = f.Write([]byte{0})
	_, _ = f.Write([]byte(key))
	return &h.idemLocks[f.Sum32()%idemStripes]
}

// New constructs and returns a Handlers instance bound to the given services.
func New(subSvc SubmissionService, revSvc ReviewService) *Handlers {
	return &Handlers{subSvc: subSvc, revSvc: revSvc, IdempotencyTTL: 24 * time.Hour}
}

// clientID returns the visitor namespace of the request.
func clientID(c *gin.Context) string {
	return middleware.ClientID(c)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
