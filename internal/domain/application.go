package domain

import "time"

// ApplicationStatus enumerates lifecycle stages for job applications.
type ApplicationStatus string

const (
	StatusWishlist  ApplicationStatus = "wishlist"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
	StatusAccepted  ApplicationStatus = "accepted"
)

// KanbanColumns lists statuses in board display order.
var KanbanColumns = []ApplicationStatus{
	StatusWishlist,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusAccepted,
}

// Valid reports whether the status is a member of the enumerated set.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusWishlist, StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// ApplicationPriority enumerates user-assigned urgency.
type ApplicationPriority string

const (
	PriorityLow    ApplicationPriority = "low"
	PriorityMedium ApplicationPriority = "medium"
	PriorityHigh   ApplicationPriority = "high"
)

// Valid reports whether the priority is a member of the enumerated set.
func (p ApplicationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// JobType enumerates employment arrangements.
type JobType string

const (
	TypeFullTime   JobType = "full-time"
	TypePartTime   JobType = "part-time"
	TypeContract   JobType = "contract"
	TypeInternship JobType = "internship"
)

// Valid reports whether the job type is a member of the enumerated set.
func (t JobType) Valid() bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship:
		return true
	}
	return false
}

// DefaultCurrency applies when a payload omits salary currency.
const DefaultCurrency = "INR"

// MaxContacts caps the contact list per application.
const MaxContacts = 10

// Salary captures an expected compensation range.
type Salary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Contact is a person attached to an application.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	LinkedIn string `json:"linkedIn,omitempty"`
}

// StatusChange is one immutable entry in an application's audit trail.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	ChangedAt time.Time         `json:"changedAt"`
}

// Application is the aggregate for one tracked job application. It is always
// owned by exactly one user; StatusHistory holds at least the creation entry
// and only ever grows.
type Application struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	Company       string              `json:"company"`
	Position      string              `json:"position"`
	Status        ApplicationStatus   `json:"status"`
	Priority      ApplicationPriority `json:"priority"`
	JobURL        string              `json:"jobUrl,omitempty"`
	Location      string              `json:"location,omitempty"`
	Type          JobType             `json:"type"`
	Salary        Salary              `json:"salary"`
	Notes         string              `json:"notes,omitempty"`
	AppliedDate   *time.Time          `json:"appliedDate"`
	InterviewDate *time.Time          `json:"interviewDate"`
	FollowUpDate  *time.Time          `json:"followUpDate"`
	Contacts      []Contact           `json:"contacts"`
	StatusHistory []StatusChange      `json:"statusHistory"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ApplyDefaults fills zero-valued enum and salary fields with their
// documented defaults.
func (a *Application) ApplyDefaults() {
	if a.Status == "" {
		a.Status = StatusWishlist
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if a.Type == "" {
		a.Type = TypeFullTime
	}
	if a.Salary.Currency == "" {
		a.Salary.Currency = DefaultCurrency
	}
	if a.Salary.Min < 0 {
		a.Salary.Min = 0
	}
	if a.Salary.Max < 0 {
		a.Salary.Max = 0
	}
	if a.Contacts == nil {
		a.Contacts = []Contact{}
	}
}

// GroupByStatus partitions applications into Kanban columns, preserving the
// input order within each column. Every column is present even when empty.
func GroupByStatus(apps []Application) map[ApplicationStatus][]Application {
	grouped := make(map[ApplicationStatus][]Application, len(KanbanColumns))
	for _, status := range KanbanColumns {
		grouped[status] = []Application{}
	}
	for _, app := range apps {
		if _, ok := grouped[app.Status]; ok {
			grouped[app.Status] = append(grouped[app.Status], app)
		}
	}
	return grouped
}
