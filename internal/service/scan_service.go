package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/observability"
	"github.com/kursadbilgin/applytrack/internal/queue"
	"github.com/kursadbilgin/applytrack/internal/ratelimit"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"github.com/kursadbilgin/applytrack/internal/scanner"
	"go.uber.org/zap"
)

const (
	defaultScanLockTTL  = 2 * time.Minute
	defaultHistoryLimit = 20
)

// MailScanner is the scan core as seen by the service.
type MailScanner interface {
	Scan(
		ctx context.Context,
		userID string,
		cred identity.Credential,
		companies []domain.Company,
		existing []domain.Notification,
	) (*scanner.Result, error)
}

// ScanReport is one finished scan.
type ScanReport struct {
	ScanID string
	*scanner.Result
}

// ScanService runs at most one mailbox scan per user at a time and relays the
// notifications it creates when a publisher is configured.
type ScanService struct {
	companies     repository.CompanyRepository
	notifications repository.NotificationRepository
	runs          repository.ScanRunRepository
	scanner       MailScanner
	locker        ratelimit.ScanLocker
	publisher     queue.Publisher
	lockTTL       time.Duration
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
	newID         func() string
}

func NewScanService(
	companies repository.CompanyRepository,
	notifications repository.NotificationRepository,
	mailScanner MailScanner,
	locker ratelimit.ScanLocker,
	lockTTL time.Duration,
	logger *zap.Logger,
) (*ScanService, error) {
	if companies == nil {
		return nil, fmt.Errorf("company repository is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if mailScanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if locker == nil {
		return nil, fmt.Errorf("scan locker is required")
	}
	if lockTTL <= 0 {
		lockTTL = defaultScanLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ScanService{
		companies:     companies,
		notifications: notifications,
		scanner:       mailScanner,
		locker:        locker,
		lockTTL:       lockTTL,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}, nil
}

// SetPublisher enables alert relay for newly created notifications.
func (s *ScanService) SetPublisher(publisher queue.Publisher) {
	if s == nil {
		return
	}
	s.publisher = publisher
}

// SetHistory enables the persisted scan history.
func (s *ScanService) SetHistory(runs repository.ScanRunRepository) {
	if s == nil {
		return
	}
	s.runs = runs
}

func (s *ScanService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Scan checks the user's mailbox once. domain.ErrScanInProgress is returned
// while another scan for the same user holds the lock.
func (s *ScanService) Scan(ctx context.Context, userID string, cred identity.Credential) (*ScanReport, error) {
	scanID := s.newID()
	logger := observability.WithContextLogger(s.logger, ctx).With(zap.String("scanId", scanID))
	start := s.now()

	release, ok, err := s.locker.Acquire(ctx, userID, s.lockTTL)
	if err != nil {
		s.observe("lock_error", start, nil)
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !ok {
		s.observe("in_progress", start, nil)
		return nil, domain.ErrScanInProgress
	}
	defer func() {
		// The lock must be released even when the request was cancelled.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release scan lock", zap.Error(err))
		}
	}()

	result, err := s.scan(ctx, userID, cred, logger, scanID)
	outcome := scanOutcome(result, err)
	s.observe(outcome, start, result)
	s.recordRun(ctx, logger, domain.ScanRun{
		ID:        scanID,
		UserID:    userID,
		Outcome:   outcome,
		StartedAt: start,
	}, result, err)
	if err != nil {
		logger.Info("mailbox scan failed", zap.Error(err))
		return nil, err
	}

	logger.Info("mailbox scan finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("created", len(result.Created)),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", len(result.Errors)),
	)
	return &ScanReport{ScanID: scanID, Result: result}, nil
}

// History lists the user's most recent scans, newest first.
func (s *ScanService) History(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error) {
	if s.runs == nil {
		return []domain.ScanRun{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := s.runs.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", err)
	}
	return runs, nil
}

func (s *ScanService) scan(
	ctx context.Context,
	userID string,
	cred identity.Credential,
	logger *zap.Logger,
	scanID string,
) (*scanner.Result, error) {
	companies, err := s.watchedCompanies(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.notifications.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	result, err := s.scanner.Scan(ctx, userID, cred, companies, existing)
	if result != nil && len(result.Created) > 0 {
		s.relay(ctx, logger, scanID, companies, result.Created)
	}
	return result, err
}

// watchedCompanies loads the companies that have a watch address, in record
// store order. A company deleted after the address listing is skipped.
func (s *ScanService) watchedCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	addresses, err := s.companies.ListWatchAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch addresses: %w", err)
	}

	companies := make([]domain.Company, 0, len(addresses))
	seen := make(map[int64]bool, len(addresses))
	for _, a := range addresses {
		if seen[a.CompanyID] {
			continue
		}
		seen[a.CompanyID] = true

		c, err := s.companies.GetByID(ctx, userID, a.CompanyID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load company %d: %w", a.CompanyID, err)
		}
		companies = append(companies, *c)
	}
	return companies, nil
}

// recordRun stores the scan in the history. Failures are logged only.
func (s *ScanService) recordRun(
	ctx context.Context,
	logger *zap.Logger,
	run domain.ScanRun,
	result *scanner.Result,
	scanErr error,
) {
	if s.runs == nil {
		return
	}

	run.FinishedAt = s.now()
	if result != nil {
		run.Candidates = result.Candidates
		run.Created = len(result.Created)
		run.Duplicates = result.Duplicates
		run.Unmatched = result.Unmatched
		run.Failed = len(result.Errors)
	}
	if scanErr != nil {
		msg := scanErr.Error()
		run.Error = &msg
	}

	if err := s.runs.Create(context.WithoutCancel(ctx), &run); err != nil {
		logger.Warn("failed to record scan run", zap.Error(err))
	}
}

// relay publishes created notifications. Failures are logged only; the
// notifications are already stored.
func (s *ScanService) relay(
	ctx context.Context,
	logger *zap.Logger,
	scanID string,
	companies []domain.Company,
	created []domain.Notification,
) {
	if s.publisher == nil {
		return
	}

	byID := make(map[int64]*domain.Company, len(companies))
	for i := range companies {
		byID[companies[i].ID] = &companies[i]
	}

	ctx = context.WithoutCancel(ctx)
	for _, n := range created {
		msg := queue.AlertMessage{
			MessageID:      s.newID(),
			ScanID:         scanID,
			UserID:         n.UserID,
			NotificationID: n.ID,
			CompanyID:      n.CompanyID,
			Message:        n.Message,
			CreatedAt:      n.CreatedAt,
		}
		if n.CompanyID != nil {
			if c, ok := byID[*n.CompanyID]; ok {
				msg.CompanyName = c.Name
				msg.Priority = c.Priority
			}
		}

		if err := s.publisher.Publish(ctx, queue.AlertsQueue, msg); err != nil {
			logger.Warn("failed to publish alert",
				zap.Int64("notificationId", n.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *ScanService) observe(outcome string, start time.Time, result *scanner.Result) {
	created, duplicates := 0, 0
	if result != nil {
		created = len(result.Created)
		duplicates = result.Duplicates
	}
	s.metrics.ObserveScan(outcome, s.now().Sub(start), created, duplicates)
}

func scanOutcome(result *scanner.Result, err error) string {
	switch {
	case err == nil && result != nil && len(result.Errors) > 0:
		return "partial"
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrAuth):
		return "auth"
	case errors.Is(err, domain.ErrNoWatchTargets):
		return "no_targets"
	case errors.Is(err, domain.ErrSearchUnavailable):
		return "search_unavailable"
	default:
		return "error"
	}
}
