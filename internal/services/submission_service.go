// Package services – SubmissionService
//
// SubmissionService is the contact form submission manager. Every submit
// attempt runs a small state machine:
//
//	Idle -> Validating -> Rejected          (field errors, nothing stored)
//	                   -> CapacityExceeded  (store full, nothing stored)
//	                   -> Accepted -> Persisted
//
// Validation never consults the store. The capacity check and the append run
// under one per-namespace lock so that concurrent requests from the same
// visitor cannot push the store past its ceiling.
//
// Persistence failures after acceptance are swallowed: the caller still gets
// the success outcome and the built submission, with Persisted=false. A read
// failure skips the write altogether so an unreadable list is never replaced.
package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/observability"
)

// State is a node of the submit state machine.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateRejected         State = "rejected"
	StateCapacityExceeded State = "capacity_exceeded"
	StateAccepted         State = "accepted"
	StatePersisted        State = "persisted"
)

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateCapacityExceeded || s == StatePersisted
}

// Outcome is the result of one submit attempt.
type Outcome struct {
	State      State
	Errors     ValidationErrors   // set when State is StateRejected
	Submission *domain.Submission // set when State is StatePersisted
	Persisted  bool               // false when the store write failed
	Message    string             // user-facing summary of the result
}

// Err maps the outcome to a service error, nil on success.
func (o Outcome) Err() error {
	switch o.State {
	case StateRejected:
		return o.Errors
	case StateCapacityExceeded:
		return ErrCapacityExceeded
	}
	return nil
}

// SubmissionOptions configures a SubmissionService.
type SubmissionOptions struct {
	StorageKey     string
	MaxSubmissions int
	ContactEmail   string
}

const lockStripes = 64

// SubmissionService manages per-visitor submission stores.
type SubmissionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the key/value repository backing every store.
	Repo StorageRepo

	Validator      Validator
	Catalog        domain.Catalog
	StorageKey     string
	MaxSubmissions int
	ContactEmail   string

	// Now is the clock used to stamp submissions.
	Now func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewSubmissionService constructs a SubmissionService, applying defaults for
// zero-valued options.
func NewSubmissionService(db *gorm.DB, r StorageRepo, catalog domain.Catalog, opts SubmissionOptions) *SubmissionService {
	if opts.StorageKey == "" {
		opts.StorageKey = "formSubmissions"
	}
	if opts.MaxSubmissions <= 0 {
		opts.MaxSubmissions = 3
	}
	if opts.ContactEmail == "" {
		opts.ContactEmail = "hello@elevatedigital.com"
	}
	return &SubmissionService{
		DB:             db,
		Repo:           r,
		Validator:      Validator{Catalog: catalog},
		Catalog:        catalog,
		StorageKey:     opts.StorageKey,
		MaxSubmissions: opts.MaxSubmissions,
		ContactEmail:   opts.ContactEmail,
		Now:            time.Now,
	}
}

// Store returns the submission store of a client namespace.
func (s *SubmissionService) Store(clientID string) *SubmissionStore {
	return &SubmissionStore{DB: s.DB, Repo: s.Repo, Namespace: clientID, Key: s.StorageKey}
}

// Submit runs one submit attempt for clientID.
func (s *SubmissionService) Submit(ctx context.Context, clientID string, in domain.FormInput) Outcome {
	ctx, span := observability.Tracer().Start(ctx, "submission.submit")
	defer span.End()
	logger := ctxLogger(ctx)

	state := StateValidating
	defer func() { span.SetAttributes(attribute.String("submission.state", string(state))) }()

	in = Normalize(in)
	if errs := s.Validator.Validate(in); !errs.Valid() {
		state = StateRejected
		submissionOutcomes.WithLabelValues(string(state)).Inc()
		return Outcome{State: state, Errors: errs, Message: "Please correct the highlighted fields."}
	}

	mu := s.lock(clientID)
	mu.Lock()
	defer mu.Unlock()

	// One read serves the capacity check, the id and the write below.
	store := s.Store(clientID)
	existing, readErr := store.read(ctx)
	if readErr != nil {
		storageErrors.WithLabelValues("read").Inc()
	}
	if len(existing) >= s.MaxSubmissions {
		state = StateCapacityExceeded
		submissionOutcomes.WithLabelValues(string(state)).Inc()
		return Outcome{State: state, Message: s.CapacityMessage()}
	}

	state = StateAccepted
	now := s.now()
	sub := domain.NewSubmission(nextID(now, existing), in, now)

	persisted := true
	var err error
	if readErr != nil {
		// Writing now would replace whatever the store really holds.
		err = fmt.Errorf("read submissions: %w", readErr)
	} else {
		err = store.Save(ctx, append(existing, sub))
	}
	if err != nil {
		persisted = false
		span.RecordError(err)
		logger.Error().Err(err).Str("namespace", clientID).Int64("submission_id", sub.ID).
			Msg("submission accepted but not persisted")
	}
	state = StatePersisted
	submissionOutcomes.WithLabelValues(string(state)).Inc()

	logger.Info().
		Int64("submission_id", sub.ID).
		Str("name", sub.FullName).
		Str("service", s.Catalog.Label(sub.Service)).
		Str("budget", sub.Budget).
		Str("message_preview", preview(sub.Message, 50)).
		Str("date", sub.Date).
		Bool("persisted", persisted).
		Msg("contact form submitted")

	return Outcome{
		State:      state,
		Submission: &sub,
		Persisted:  persisted,
		Message:    SuccessMessage(sub.FullName),
	}
}

// List returns clientID's submissions in insertion order.
func (s *SubmissionService) List(ctx context.Context, clientID string) []domain.Submission {
	return s.Store(clientID).Load(ctx)
}

// Find returns the submission with the given id.
func (s *SubmissionService) Find(ctx context.Context, clientID string, id int64) (*domain.Submission, error) {
	for _, sub := range s.List(ctx, clientID) {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, ErrSubmissionNotFound
}

// Count returns how many submissions clientID has stored.
func (s *SubmissionService) Count(ctx context.Context, clientID string) int {
	return s.Store(clientID).Count(ctx)
}

// Capacity returns the stored count, the ceiling and whether it is reached.
func (s *SubmissionService) Capacity(ctx context.Context, clientID string) (count, max int, full bool) {
	count = s.Count(ctx, clientID)
	return count, s.MaxSubmissions, count >= s.MaxSubmissions
}

// Clear empties clientID's store.
func (s *SubmissionService) Clear(ctx context.Context, clientID string) error {
	mu := s.lock(clientID)
	mu.Lock()
	defer mu.Unlock()
	if err := s.Store(clientID).Clear(ctx); err != nil {
		ctxLogger(ctx).Error().Err(err).Str("namespace", clientID).Msg("clear submissions failed")
		return err
	}
	return nil
}

// Stats returns the plain-text statistics summary of clientID's store.
func (s *SubmissionService) Stats(ctx context.Context, clientID string) string {
	return FormatStats(s.List(ctx, clientID), s.Catalog)
}

// ValidateField checks one field value on its own.
func (s *SubmissionService) ValidateField(field, value string) (string, error) {
	return s.Validator.ValidateField(field, value)
}

// Services returns the selectable services in catalog order.
func (s *SubmissionService) Services() []domain.Service {
	return s.Catalog.Services()
}

// CapacityMessage is shown when a visitor has used up their submissions.
func (s *SubmissionService) CapacityMessage() string {
	return fmt.Sprintf("You have reached the maximum number of submissions (%d). Please contact us directly at %s",
		s.MaxSubmissions, s.ContactEmail)
}

// SuccessMessage is shown after a submission is accepted.
func SuccessMessage(fullName string) string {
	return fmt.Sprintf("Thank you, %s. We will contact you soon.", fullName)
}

// FormatStats renders the statistics summary for subs. Service ids are shown
// by catalog label in order of first appearance.
func FormatStats(subs []domain.Submission, catalog domain.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total submissions: %d", len(subs))
	if len(subs) == 0 {
		return b.String()
	}

	counts := map[string]int{}
	var order []string
	for _, sub := range subs {
		if _, seen := counts[sub.Service]; !seen {
			order = append(order, sub.Service)
		}
		counts[sub.Service]++
	}

	b.WriteString("\n\nSubmissions by service:")
	for _, id := range order {
		fmt.Fprintf(&b, "\n- %s: %d", catalog.Label(id), counts[id])
	}

	last := subs[len(subs)-1]
	fmt.Fprintf(&b, "\n\nLast submission: %s from %s", last.Date, last.FullName)
	return b.String()
}

func (s *SubmissionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SubmissionService) lock(clientID string) *sync.Mutex {
	return &s.locks[stripe(clientID)]
}

// stripe maps a namespace onto one of the lock stripes.
func stripe(namespace string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return h.Sum32() % lockStripes
}

// nextID derives an id from now, bumped past the last stored id so ids stay
// strictly increasing when the clock stalls or steps back.
func nextID(now time.Time, existing []domain.Submission) int64 {
	id := now.UnixMilli()
	if n := len(existing); n > 0 && id <= existing[n-1].ID {
		id = existing[n-1].ID + 1
	}
	return id
}

// preview truncates s to max runes, appending "..." when cut.
func preview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
