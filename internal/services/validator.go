package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

var (
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRE = regexp.MustCompile(`^[\d\s\-()]+$`)
)

// Minimum trimmed lengths, counted in runes.
const (
	minNameLen    = 2
	minMessageLen = 10
)

// Messages shown when the whole form is validated on submit.
const (
	msgFullName = "Please enter your full name (at least 2 characters)"
	msgEmail    = "Please enter a valid email address"
	msgPhone    = "Please enter a valid phone number"
	msgService  = "Please select a service"
	msgMessage  = "Please enter a message (at least 10 characters)"
)

// Shorter messages shown when a single field loses focus.
const (
	msgFieldFullName = "Please enter your full name"
	msgFieldEmail    = "Please enter a valid email"
	msgFieldMessage  = "Please enter a longer message"
)

// Validator decides whether raw form values make a legal submission.
// It has no side effects. An empty Catalog means domain.DefaultCatalog.
type Validator struct {
	Catalog domain.Catalog
}

func (v Validator) catalog() domain.Catalog {
	if v.Catalog.Len() == 0 {
		return domain.DefaultCatalog()
	}
	return v.Catalog
}

// Validate checks every field independently and returns one message per
// invalid field. It never stops at the first failure.
func (v Validator) Validate(in domain.FormInput) ValidationErrors {
	in = Normalize(in)
	errs := ValidationErrors{}

	if utf8.RuneCountInString(in.FullName) < minNameLen {
		errs[domain.FieldFullName] = msgFullName
	}
	if !ValidEmail(in.Email) {
		errs[domain.FieldEmail] = msgEmail
	}
	if !ValidPhone(in.Phone) {
		errs[domain.FieldPhone] = msgPhone
	}
	if in.Service == "" || !v.catalog().Has(in.Service) {
		errs[domain.FieldService] = msgService
	}
	if utf8.RuneCountInString(in.Message) < minMessageLen {
		errs[domain.FieldMessage] = msgMessage
	}
	return errs
}

// ValidateField checks a single field the way the form does on blur. It
// returns "" when the value is acceptable.
func (v Validator) ValidateField(field, value string) (string, error) {
	value = normalizeText(value)
	switch field {
	case domain.FieldFullName:
		if utf8.RuneCountInString(value) < minNameLen {
			return msgFieldFullName, nil
		}
	case domain.FieldEmail:
		if !ValidEmail(value) {
			return msgFieldEmail, nil
		}
	case domain.FieldPhone:
		if !ValidPhone(value) {
			return msgPhone, nil
		}
	case domain.FieldService:
		if value == "" || !v.catalog().Has(value) {
			return msgService, nil
		}
	case domain.FieldMessage:
		if utf8.RuneCountInString(value) < minMessageLen {
			return msgFieldMessage, nil
		}
	case domain.FieldCompany, domain.FieldBudget:
	default:
		return "", ErrUnknownField
	}
	return "", nil
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool { return emailRE.MatchString(s) }

// ValidPhone reports whether s is empty or only holds digits, spaces,
// hyphens and parentheses.
func ValidPhone(s string) bool { return s == "" || phoneRE.MatchString(s) }

// Normalize trims every field and converts free text to NFC so that length
// checks and stored values do not depend on the client's Unicode form.
func Normalize(in domain.FormInput) domain.FormInput {
	return domain.FormInput{
		FullName: normalizeText(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Company:  normalizeText(in.Company),
		Service:  strings.TrimSpace(in.Service),
		Budget:   strings.TrimSpace(in.Budget),
		Message:  normalizeText(in.Message),
	}
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
