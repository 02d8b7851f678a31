package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the pipeline stage of a tracked company.
type Status string

const (
	StatusNotApplied      Status = "not_applied"
	StatusScreening       Status = "screening"
	StatusFirstInterview  Status = "first_interview"
	StatusSecondInterview Status = "second_interview"
	StatusFinalInterview  Status = "final_interview"
	StatusOffer           Status = "offer"
	StatusRejected        Status = "rejected"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusNotApplied, StatusScreening, StatusFirstInterview, StatusSecondInterview,
		StatusFinalInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// IsInterview reports whether the stage is one of the interview rounds.
func (s Status) IsInterview() bool {
	return s == StatusFirstInterview || s == StatusSecondInterview || s == StatusFinalInterview
}

// IsClosed reports whether the application reached a final outcome.
func (s Status) IsClosed() bool {
	return s == StatusOffer || s == StatusRejected
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// Priority is the user's interest tier for a company.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// legacyPriorityNormal was stored by older clients and means medium.
const legacyPriorityNormal = "normal"

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// StoredValues lists the column values that read back as p, including the
// legacy spelling of medium.
func (p Priority) StoredValues() []string {
	if p == PriorityMedium {
		return []string{string(p), legacyPriorityNormal}
	}
	return []string{string(p)}
}

func ParsePriorityFromString(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == legacyPriorityNormal {
		return PriorityMedium, nil
	}
	pr := Priority(normalized)
	if !pr.IsValid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrValidation, s)
	}
	return pr, nil
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MaxNameLength = 255
)

// Company is a tracked employer/application owned by a single user.
type Company struct {
	ID                int64
	UserID            string
	Name              string
	Status            Status
	Priority          Priority
	Industry          string
	NextDate          string
	NextTime          string
	NextEndTime       string
	EventContent      string
	EventRequirements string
	PortalURL         string
	LoginID           string
	LoginSecret       string
	Notes             string
	ContactEmail      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WatchAddress is the normalized sender address expected for the company,
// or "" when none is configured.
func (c *Company) WatchAddress() string {
	return strings.ToLower(strings.TrimSpace(c.ContactEmail))
}

// ClearSchedule blanks every next-event field.
func (c *Company) ClearSchedule() {
	c.NextDate = ""
	c.NextTime = ""
	c.NextEndTime = ""
	c.EventContent = ""
	c.EventRequirements = ""
}

func (c *Company) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if n := len([]rune(name)); n > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters (got %d)", ErrValidation, MaxNameLength, n)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, c.Status)
	}
	if !c.Priority.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, c.Priority)
	}
	if err := validateLayout(c.NextDate, DateLayout, "nextDate"); err != nil {
		return err
	}
	if err := validateLayout(c.NextTime, TimeLayout, "nextTime"); err != nil {
		return err
	}
	if err := validateLayout(c.NextEndTime, TimeLayout, "nextEndTime"); err != nil {
		return err
	}
	if c.NextTime != "" && c.NextEndTime != "" && c.NextEndTime < c.NextTime {
		return fmt.Errorf("%w: nextEndTime must not be before nextTime", ErrValidation)
	}
	if email := strings.TrimSpace(c.ContactEmail); email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("%w: contactEmail %q is not an email address", ErrValidation, email)
	}
	return nil
}

func validateLayout(value, layout, field string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(layout, value); err != nil {
		return fmt.Errorf("%w: %s must match %s", ErrValidation, field, layout)
	}
	return nil
}
