package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/observability"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"go.uber.org/zap"
)

// CompanyService owns the tracked-company use cases.
type CompanyService struct {
	companies     repository.CompanyRepository
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// Dashboard is the at-a-glance pipeline summary.
type Dashboard struct {
	Total              int
	Interviewing       int
	Offers             int
	HighPriorityActive int
}

func NewCompanyService(
	companies repository.CompanyRepository,
	notifications repository.NotificationRepository,
	logger *zap.Logger,
) (*CompanyService, error) {
	if companies == nil {
		return nil, fmt.Errorf("company repository is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CompanyService{
		companies:     companies,
		notifications: notifications,
		logger:        logger,
	}, nil
}

// Create stores a new company and records an "Added" notification for it.
// A failure to write the notification is logged; the company stays created.
func (s *CompanyService) Create(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: company is required", domain.ErrValidation)
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.Status == "" {
		c.Status = domain.StatusNotApplied
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityMedium
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.companies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	companyID := c.ID
	_, err := s.notifications.Append(ctx, domain.Notification{
		UserID:    c.UserID,
		Message:   domain.CompanyAddedMessage(c.Name),
		CompanyID: &companyID,
	})
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Warn("failed to record company added notification",
			zap.Int64("companyId", c.ID),
			zap.Error(err),
		)
	}

	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	return s.companies.GetByID(ctx, userID, id)
}

// List returns the user's companies soonest event first. Companies without a
// next date follow, and ties break on id.
func (s *CompanyService) List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error) {
	companies, err := s.companies.List(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	slices.SortStableFunc(companies, func(a, b domain.Company) int {
		if c := compareBlankLast(a.NextDate, b.NextDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return companies, nil
}

// Update replaces the editable fields and returns the row as stored.
func (s *CompanyService) Update(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: company is required", domain.ErrValidation)
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, c.UserID, c.ID)
}

func (s *CompanyService) Delete(ctx context.Context, userID string, id int64) error {
	return s.companies.Delete(ctx, userID, id)
}

// ClearSchedule blanks the next-event fields of one company.
func (s *CompanyService) ClearSchedule(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	current, err := s.companies.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	current.ClearSchedule()
	if err := s.companies.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, userID, id)
}

// Calendar lists the companies with an event on date, earliest first and
// untimed entries last.
func (s *CompanyService) Calendar(ctx context.Context, userID string, date string) ([]domain.Company, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must match %s", domain.ErrValidation, domain.DateLayout)
	}

	companies, err := s.companies.List(ctx, userID, repository.ListParams{NextDate: date})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar: %w", err)
	}

	slices.SortStableFunc(companies, func(a, b domain.Company) int {
		if c := compareBlankLast(a.NextTime, b.NextTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return companies, nil
}

func (s *CompanyService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	companies, err := s.companies.List(ctx, userID, repository.ListParams{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	d := Dashboard{Total: len(companies)}
	for i := range companies {
		c := &companies[i]
		if c.Status.IsInterview() {
			d.Interviewing++
		}
		if c.Status == domain.StatusOffer {
			d.Offers++
		}
		if c.Priority == domain.PriorityHigh && !c.Status.IsClosed() {
			d.HighPriorityActive++
		}
	}
	return d, nil
}

// compareBlankLast orders fixed-width date/time strings, blanks after values.
func compareBlankLast(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return strings.Compare(a, b)
	}
}
