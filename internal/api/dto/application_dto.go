package dto

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
)

// SalaryInput is the expected compensation range in a payload.
type SalaryInput struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency string   `json:"currency"`
}

// ContactInput is one contact entry in a payload.
type ContactInput struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedIn"`
}

// CreateApplicationRequest payload. Date fields accept ISO-8601 strings or
// empty string, which clears the value.
type CreateApplicationRequest struct {
	Company       string         `json:"company"`
	Position      string         `json:"position"`
	Status        string         `json:"status"`
	Priority      string         `json:"priority"`
	JobURL        string         `json:"jobUrl"`
	Location      string         `json:"location"`
	Type          string         `json:"type"`
	Salary        *SalaryInput   `json:"salary"`
	Notes         string         `json:"notes"`
	AppliedDate   string         `json:"appliedDate"`
	InterviewDate string         `json:"interviewDate"`
	FollowUpDate  string         `json:"followUpDate"`
	Contacts      []ContactInput `json:"contacts"`
}

// UpdateApplicationRequest is the partial-update payload; nil pointers mean
// the field was absent and must remain untouched.
type UpdateApplicationRequest struct {
	Company       *string        `json:"company"`
	Position      *string        `json:"position"`
	Status        *string        `json:"status"`
	Priority      *string        `json:"priority"`
	JobURL        *string        `json:"jobUrl"`
	Location      *string        `json:"location"`
	Type          *string        `json:"type"`
	Salary        *SalaryInput   `json:"salary"`
	Notes         *string        `json:"notes"`
	AppliedDate   *string        `json:"appliedDate"`
	InterviewDate *string        `json:"interviewDate"`
	FollowUpDate  *string        `json:"followUpDate"`
	Contacts      []ContactInput `json:"contacts"`
}

// UpdateStatusRequest payload for the dedicated status endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// FieldErrors accumulates validation messages keyed by field name.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Empty reports whether validation passed.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

const (
	maxNameLen  = 100
	maxNotesLen = 2000
)

// Validate checks the creation payload against the field rules.
func (r CreateApplicationRequest) Validate() FieldErrors {
	errs := FieldErrors{}

	if r.Company == "" {
		errs.add("company", "Company name is required")
	} else if len(r.Company) > maxNameLen {
		errs.add("company", fmt.Sprintf("Company name must be at most %d characters", maxNameLen))
	}
	if r.Position == "" {
		errs.add("position", "Position is required")
	} else if len(r.Position) > maxNameLen {
		errs.add("position", fmt.Sprintf("Position must be at most %d characters", maxNameLen))
	}

	if r.Status != "" && !domain.ApplicationStatus(r.Status).Valid() {
		errs.add("status", "Invalid status")
	}
	if r.Priority != "" && !domain.ApplicationPriority(r.Priority).Valid() {
		errs.add("priority", "Invalid priority")
	}
	if r.Type != "" && !domain.JobType(r.Type).Valid() {
		errs.add("type", "Invalid job type")
	}

	if r.JobURL != "" && !validURL(r.JobURL) {
		errs.add("jobUrl", "Invalid URL")
	}
	if len(r.Location) > maxNameLen {
		errs.add("location", fmt.Sprintf("Location must be at most %d characters", maxNameLen))
	}
	if len(r.Notes) > maxNotesLen {
		errs.add("notes", fmt.Sprintf("Notes must be at most %d characters", maxNotesLen))
	}

	if r.Salary != nil {
		if r.Salary.Min != nil && *r.Salary.Min < 0 {
			errs.add("salary", "Salary minimum must be non-negative")
		}
		if r.Salary.Max != nil && *r.Salary.Max < 0 {
			errs.add("salary", "Salary maximum must be non-negative")
		}
	}

	validateDate(errs, "appliedDate", r.AppliedDate)
	validateDate(errs, "interviewDate", r.InterviewDate)
	validateDate(errs, "followUpDate", r.FollowUpDate)
	validateContacts(errs, r.Contacts)

	return errs
}

// Validate checks only the fields present in the partial payload.
func (r UpdateApplicationRequest) Validate() FieldErrors {
	errs := FieldErrors{}

	if r.Company != nil {
		if *r.Company == "" {
			errs.add("company", "Company name is required")
		} else if len(*r.Company) > maxNameLen {
			errs.add("company", fmt.Sprintf("Company name must be at most %d characters", maxNameLen))
		}
	}
	if r.Position != nil {
		if *r.Position == "" {
			errs.add("position", "Position is required")
		} else if len(*r.Position) > maxNameLen {
			errs.add("position", fmt.Sprintf("Position must be at most %d characters", maxNameLen))
		}
	}
	if r.Status != nil && !domain.ApplicationStatus(*r.Status).Valid() {
		errs.add("status", "Invalid status")
	}
	if r.Priority != nil && !domain.ApplicationPriority(*r.Priority).Valid() {
		errs.add("priority", "Invalid priority")
	}
	if r.Type != nil && !domain.JobType(*r.Type).Valid() {
		errs.add("type", "Invalid job type")
	}
	if r.JobURL != nil && *r.JobURL != "" && !validURL(*r.JobURL) {
		errs.add("jobUrl", "Invalid URL")
	}
	if r.Location != nil && len(*r.Location) > maxNameLen {
		errs.add("location", fmt.Sprintf("Location must be at most %d characters", maxNameLen))
	}
	if r.Notes != nil && len(*r.Notes) > maxNotesLen {
		errs.add("notes", fmt.Sprintf("Notes must be at most %d characters", maxNotesLen))
	}
	if r.Salary != nil {
		if r.Salary.Min != nil && *r.Salary.Min < 0 {
			errs.add("salary", "Salary minimum must be non-negative")
		}
		if r.Salary.Max != nil && *r.Salary.Max < 0 {
			errs.add("salary", "Salary maximum must be non-negative")
		}
	}
	if r.AppliedDate != nil {
		validateDate(errs, "appliedDate", *r.AppliedDate)
	}
	if r.InterviewDate != nil {
		validateDate(errs, "interviewDate", *r.InterviewDate)
	}
	if r.FollowUpDate != nil {
		validateDate(errs, "followUpDate", *r.FollowUpDate)
	}
	validateContacts(errs, r.Contacts)

	return errs
}

// Validate checks the status payload.
func (r UpdateStatusRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if !domain.ApplicationStatus(r.Status).Valid() {
		errs.add("status", "Invalid status")
	}
	return errs
}

// ParseDate converts a validated date string; empty string yields nil.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// ToContacts converts payload contacts into domain contacts.
func ToContacts(contacts []ContactInput) []domain.Contact {
	if contacts == nil {
		return nil
	}
	out := make([]domain.Contact, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, domain.Contact{
			Name:     contact.Name,
			Role:     contact.Role,
			Email:    contact.Email,
			LinkedIn: contact.LinkedIn,
		})
	}
	return out
}

// ToSalary converts a payload salary; absent numbers coerce to zero.
func ToSalary(salary *SalaryInput) domain.Salary {
	out := domain.Salary{Currency: domain.DefaultCurrency}
	if salary == nil {
		return out
	}
	if salary.Min != nil && *salary.Min > 0 {
		out.Min = *salary.Min
	}
	if salary.Max != nil && *salary.Max > 0 {
		out.Max = *salary.Max
	}
	if salary.Currency != "" {
		out.Currency = salary.Currency
	}
	return out
}

func validateDate(errs FieldErrors, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		errs.add(field, "Invalid date")
	}
}

func validateContacts(errs FieldErrors, contacts []ContactInput) {
	if len(contacts) > domain.MaxContacts {
		errs.add("contacts", fmt.Sprintf("At most %d contacts allowed", domain.MaxContacts))
	}
	for _, contact := range contacts {
		if contact.Email != "" && !validEmail(contact.Email) {
			errs.add("contacts", "Invalid contact email")
		}
		if contact.LinkedIn != "" && !validURL(contact.LinkedIn) {
			errs.add("contacts", "Invalid contact URL")
		}
	}
}

func validURL(value string) bool {
	parsed, err := url.Parse(value)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}
