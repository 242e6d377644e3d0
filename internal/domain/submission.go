// Package domain defines the core types of the contact backend: the contact
// form submission, the service catalog, review summaries, and the persistence
// models mapped with GORM.
package domain

import "time"

// Sentinel values stored in place of omitted optional fields.
const (
	NotProvided  = "Not provided"
	NotSpecified = "Not specified"
)

// Display formats for the two timestamps stamped on a Submission.
const (
	// DateLayout renders a long en-US date, e.g. "March 4, 2025".
	DateLayout = "January 2, 2006"
	// TimestampLayout renders an ISO-8601 UTC instant with milliseconds.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Field names used as keys of validation error maps.
const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldCompany  = "company"
	FieldService  = "service"
	FieldBudget   = "budget"
	FieldMessage  = "message"
)

// Submission is one accepted contact-form entry. The JSON layout is the
// persisted layout: the store holds a JSON array of these objects.
//
// Fields:
//   - ID: time-derived integer, strictly increasing within one store.
//   - FullName, Email, Service, Message: required, trimmed.
//   - Phone, Company: NotProvided when blank.
//   - Budget: NotSpecified when blank.
//   - Date: long human-readable date of creation (DateLayout).
//   - Timestamp: ISO-8601 UTC creation instant (TimestampLayout).
type Submission struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Service   string `json:"service"`
	Budget    string `json:"budget"`
	Message   string `json:"message"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// FormInput carries the raw field values of one form submit.
type FormInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Service  string `json:"service"`
	Budget   string `json:"budget"`
	Message  string `json:"message"`
}

// NewSubmission builds a Submission from already-validated input, filling
// sentinels for blank optional fields and stamping both dates from now.
func NewSubmission(id int64, in FormInput, now time.Time) Submission {
	return Submission{
		ID:        id,
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     orDefault(in.Phone, NotProvided),
		Company:   orDefault(in.Company, NotProvided),
		Service:   in.Service,
		Budget:    orDefault(in.Budget, NotSpecified),
		Message:   in.Message,
		Date:      now.Format(DateLayout),
		Timestamp: now.UTC().Format(TimestampLayout),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
