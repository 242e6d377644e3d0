// Submission HTTP handlers.
//
// This file exposes REST endpoints for the contact form:
//   - POST   /submissions            (submit the form)
//   - POST   /submissions/validate   (check one field, as on blur)
//   - GET    /submissions            (list, paginated, ETag support)
//   - GET    /submissions/{id}       (fetch one)
//   - GET    /submissions/stats      (plain-text summary)
//   - GET    /submissions/capacity   (count vs. ceiling)
//   - DELETE /submissions            (clear)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// submit exists for (client, key), the handler returns that stored submission
// with 200 and `Idempotency-Replayed: true` instead of submitting again.
// Concurrent submits sharing a key are serialized within the process.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/http/middleware"
	"github.com/tbourn/go-contact-backend/internal/repo"
	"github.com/tbourn/go-contact-backend/internal/services"
	"github.com/tbourn/go-contact-backend/internal/utils"
)

// IdempotencyScope partitions idempotency keys of the submit endpoint.
const IdempotencyScope = "submissions"

//
// DTOs
//

// SubmitRequest is the JSON payload of a contact form submit.
type SubmitRequest struct {
	FullName string `json:"fullName" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Phone    string `json:"phone" example:"(555) 123-4567"`
	Company  string `json:"company" example:"Acme Inc"`
	Service  string `json:"service" example:"seo"`
	Budget   string `json:"budget" example:"5k-10k"`
	Message  string `json:"message" example:"We would like to improve our search rankings."`
}

// SubmitResponse is the success view of a submit.
type SubmitResponse struct {
	Submission *domain.Submission `json:"submission"`
	// Message is the thank-you text shown to the visitor.
	Message string `json:"message" example:"Thank you, Jane Doe. We will contact you soon."`
	// Persisted is false when the submission was accepted but could not be stored.
	Persisted bool `json:"persisted"`
}

// ValidateFieldRequest names one form field and its current value.
type ValidateFieldRequest struct {
	Field string `json:"field" binding:"required" example:"email"`
	Value string `json:"value" example:"jane@"`
}

// ValidateFieldResponse reports whether the value is acceptable.
type ValidateFieldResponse struct {
	Field string `json:"field" example:"email"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty" example:"Please enter a valid email"`
}

// ListSubmissionsResponse wraps a page of submissions and pagination information.
type ListSubmissionsResponse struct {
	Submissions []domain.Submission `json:"submissions"`
	Pagination  Pagination          `json:"pagination"`
}

// CapacityResponse reports how many submissions the visitor has left.
type CapacityResponse struct {
	Count      int    `json:"count" example:"1"`
	Max        int    `json:"max" example:"3"`
	AtCapacity bool   `json:"at_capacity"`
	Message    string `json:"message,omitempty"`
}

//
// Helpers
//

// storeHandle returns the DB and storage key behind the concrete service, if
// any. ETags and idempotency records are skipped without them.
func (h *Handlers) storeHandle() (*gorm.DB, string) {
	if svc, ok := h.subSvc.(*services.SubmissionService); ok && svc.DB != nil {
		return svc.DB, svc.StorageKey
	}
	return nil, ""
}

func (r SubmitRequest) input() domain.FormInput {
	return domain.FormInput{
		FullName: r.FullName,
		Email:    r.Email,
		Phone:    r.Phone,
		Company:  r.Company,
		Service:  r.Service,
		Budget:   r.Budget,
		Message:  r.Message,
	}
}

//
// Handlers
//

// CreateSubmission godoc
// @ID          createSubmission
// @Summary     Submit the contact form
// @Description Validates the form, enforces the per-visitor submission limit, and stores the submission.
// @Description Supports idempotency via the Idempotency-Key header (same key returns the stored submission).
// @Tags        Submissions
// @Accept      json
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Visitor id"                          example(visitor-123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"    example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SubmitRequest  true  "Form values"
//
// @Success     201  {object}  handlers.SubmitResponse            "Accepted"
// @Success     200  {object}  handlers.SubmitResponse            "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse             "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse             "Submission limit reached"
// @Failure     422  {object}  handlers.ValidationErrorResponse   "Invalid fields"
// @Router      /submissions [post]
func (h *Handlers) CreateSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	cid := clientID(c)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	db, _ := h.storeHandle()
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Idempotency (replay path). The lookup, the submit and the record write
	// run under one lock so that concurrent retries of a key store only once.
	if idemKey != "" && db != nil {
		mu := h.idemLock(cid, idemKey)
		mu.Lock()
		defer mu.Unlock()

		if rec, err := repo.GetIdempotency(ctx, db, cid, IdempotencyScope, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err := h.subSvc.Find(ctx, cid, rec.SubmissionID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, SubmitResponse{
					Submission: prev,
					Message:    services.SuccessMessage(prev.FullName),
					Persisted:  true,
				})
				return
			}
		}
	}

	out := h.subSvc.Submit(ctx, cid, req.input())
	switch out.State {
	case services.StateRejected:
		failValidation(c, out.Message, out.Errors)
		return
	case services.StateCapacityExceeded:
		fail(c, http.StatusConflict, ErrCodeCapacityExceeded, out.Message)
		return
	case services.StatePersisted:
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "unexpected submit state "+string(out.State))
		return
	}

	// Idempotency (store path) - best effort, only for stored submissions.
	if idemKey != "" && db != nil && out.Persisted {
		ttl := h.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if _, err := repo.CreateIdempotency(ctx, db, cid, IdempotencyScope, idemKey, out.Submission.ID, http.StatusCreated, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusCreated, SubmitResponse{
		Submission: out.Submission,
		Message:    out.Message,
		Persisted:  out.Persisted,
	})
}

// ValidateField godoc
// @ID          validateField
// @Summary     Validate a single form field
// @Description Checks one field the way the form does when the field loses focus.
// @Tags        Submissions
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ValidateFieldRequest  true  "Field and value"
// @Success     200  {object}  handlers.ValidateFieldResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or unknown field"
// @Router      /submissions/validate [post]
func (h *Handlers) ValidateField(c *gin.Context) {
	var req ValidateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "field required")
		return
	}
	msg, err := h.subSvc.ValidateField(req.Field, req.Value)
	if err != nil {
		if errors.Is(err, services.ErrUnknownField) {
			fail(c, http.StatusBadRequest, ErrCodeUnknownField, fmt.Sprintf("unknown field %q", req.Field))
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ValidateFieldResponse{Field: req.Field, Valid: msg == "", Error: msg})
}

// ListSubmissions godoc
// @ID          listSubmissions
// @Summary     List submissions (paginated)
// @Description Returns a page of the visitor's submissions in the order they were made. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Submissions
// @Produce     json
//
// @Param       X-Client-ID    header  string  false "Visitor id"                   example(visitor-123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListSubmissionsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Router      /submissions [get]
func (h *Handlers) ListSubmissions(c *gin.Context) {
	ctx := c.Request.Context()
	cid := clientID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db, key := h.storeHandle(); db != nil {
		exists, updatedAt, err := repo.EntryStats(ctx, db, cid, key)
		if err == nil {
			var ts int64
			if exists && updatedAt != nil {
				ts = updatedAt.UnixNano()
			}
			etag := fmt.Sprintf(`W/"submissions:%s:%d:%d:%d"`, cid, ts, page, pageSize)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	all := h.subSvc.List(ctx, cid)
	start, end, totalPages := utils.PageBounds(len(all), page, pageSize)
	ok(c, http.StatusOK, ListSubmissionsResponse{
		Submissions: all[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int64(len(all)),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSubmission godoc
// @ID          getSubmission
// @Summary     Fetch one submission
// @Tags        Submissions
// @Produce     json
// @Param       X-Client-ID  header  string  false "Visitor id"      example(visitor-123)
// @Param       id           path    int     true  "Submission id"   example(1741098615123)
// @Success     200  {object}  domain.Submission
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /submissions/{id} [get]
func (h *Handlers) GetSubmission(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	sub, err := h.subSvc.Find(c.Request.Context(), clientID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "submission not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sub)
}

// SubmissionStats godoc
// @ID          submissionStats
// @Summary     Submission statistics
// @Description Plain-text summary: total, per-service counts in order of first appearance, and the latest submission.
// @Tags        Submissions
// @Produce     plain
// @Param       X-Client-ID  header  string  false "Visitor id"  example(visitor-123)
// @Success     200  {string}  string  "Total submissions: 1 ..."
// @Router      /submissions/stats [get]
func (h *Handlers) SubmissionStats(c *gin.Context) {
	c.String(http.StatusOK, h.subSvc.Stats(c.Request.Context(), clientID(c)))
}

// SubmissionCapacity godoc
// @ID          submissionCapacity
// @Summary     Remaining submission capacity
// @Tags        Submissions
// @Produce     json
// @Param       X-Client-ID  header  string  false "Visitor id"  example(visitor-123)
// @Success     200  {object}  handlers.CapacityResponse
// @Router      /submissions/capacity [get]
func (h *Handlers) SubmissionCapacity(c *gin.Context) {
	count, max, full := h.subSvc.Capacity(c.Request.Context(), clientID(c))
	resp := CapacityResponse{Count: count, Max: max, AtCapacity: full}
	if full {
		resp.Message = h.subSvc.CapacityMessage()
	}
	ok(c, http.StatusOK, resp)
}

// ClearSubmissions godoc
// @ID          clearSubmissions
// @Summary     Clear all submissions
// @Description Removes every stored submission of the visitor. Clearing an empty store succeeds.
// @Tags        Submissions
// @Param       X-Client-ID  header  string  false "Visitor id"  example(visitor-123)
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /submissions [delete]
func (h *Handlers) ClearSubmissions(c *gin.Context) {
	if err := h.subSvc.Clear(c.Request.Context(), clientID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeClearFailed, err.Error())
		return
	}
	noContent(c)
}
