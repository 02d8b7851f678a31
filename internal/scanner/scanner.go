package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/mailbox"
	"github.com/kursadbilgin/applytrack/internal/observability"
	"github.com/kursadbilgin/applytrack/internal/ratelimit"
)

const (
	DefaultMaxResults = 10

	// NoSubject stands in for a missing or blank Subject header.
	NoSubject = "(no subject)"
)

// Mailbox is the read-only provider surface the scanner needs.
type Mailbox interface {
	Search(ctx context.Context, cred identity.Credential, query string, maxResults int64) ([]string, error)
	Get(ctx context.Context, cred identity.Credential, id string) (mailbox.Message, error)
}

// NotificationAppender persists a new notification and returns it with its
// id and timestamp assigned.
type NotificationAppender interface {
	Append(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

// Scanner turns matching inbox messages into notifications.
type Scanner struct {
	mailbox    Mailbox
	store      NotificationAppender
	limiter    ratelimit.RateLimiter
	maxResults int64
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// New builds a Scanner. limiter may be nil to disable provider throttling.
func New(
	mb Mailbox,
	store NotificationAppender,
	limiter ratelimit.RateLimiter,
	maxResults int,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*Scanner, error) {
	if mb == nil {
		return nil, fmt.Errorf("mailbox is required")
	}
	if store == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scanner{
		mailbox:    mb,
		store:      store,
		limiter:    limiter,
		maxResults: int64(maxResults),
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Scan searches the mailbox for mail from any company's watch address and
// records one notification per new match. Call-level failures return
// domain.ErrAuth, domain.ErrNoWatchTargets or domain.ErrSearchUnavailable
// before anything is written. Per-message failures land in Result.Errors.
// On cancellation the partial result is returned with the context error.
func (s *Scanner) Scan(
	ctx context.Context,
	userID string,
	cred identity.Credential,
	companies []domain.Company,
	existing []domain.Notification,
) (*Result, error) {
	if !cred.Usable(s.now()) {
		return nil, fmt.Errorf("%w: mailbox credential is missing or expired", domain.ErrAuth)
	}

	targets := WatchTargets(companies)
	if len(targets) == 0 {
		return nil, domain.ErrNoWatchTargets
	}

	logger := observability.WithContextLogger(s.logger, ctx)
	limiterKey := "mailbox:" + userID

	if err := s.wait(ctx, limiterKey, logger); err != nil {
		return nil, err
	}
	ids, err := s.mailbox.Search(ctx, cred, BuildQuery(targets), s.maxResults)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	result := &Result{Candidates: len(ids)}
	notified := make([]string, 0, len(existing)+len(ids))
	for i := range existing {
		notified = append(notified, existing[i].Message)
	}

	// Provider order is newest first; walk it backwards so the newest match
	// is created last and shows on top of a newest-first list.
	for i := len(ids) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.wait(ctx, limiterKey, logger); err != nil {
			return result, err
		}

		id := ids[i]
		msg, err := s.mailbox.Get(ctx, cred, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			s.recordError(result, logger, MessageError{MessageID: id, Kind: MessageFetchError, Err: err})
			continue
		}

		from := HeaderValue(msg.Headers, "From")
		subject := strings.TrimSpace(HeaderValue(msg.Headers, "Subject"))
		if subject == "" {
			subject = NoSubject
		}

		company, ok := MatchCompany(from, companies)
		if !ok {
			result.Unmatched++
			logger.Debug("message matched no company", zap.String("messageId", id))
			continue
		}

		if IsAlreadyNotified(subject, notified) {
			result.Duplicates++
			continue
		}

		body, err := DecodeBody(ExtractBody(msg.Payload))
		if err != nil {
			s.recordError(result, logger, MessageError{MessageID: id, Kind: DecodeError, Err: err})
			body = ""
		}

		companyID := company.ID
		n := domain.Notification{
			UserID:    userID,
			Message:   domain.MailMessage(company.Name, subject),
			IsRead:    false,
			CompanyID: &companyID,
		}
		if body != "" {
			n.EmailBody = &body
		}

		saved, err := s.store.Append(ctx, n)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			s.recordError(result, logger, MessageError{MessageID: id, Kind: PersistError, Err: err})
			continue
		}

		result.Created = append(result.Created, saved)
		notified = append(notified, saved.Message)
		logger.Info("mail notification created",
			zap.String("messageId", id),
			zap.Int64("companyId", company.ID),
			zap.Int64("notificationId", saved.ID),
		)
	}

	return result, nil
}

// wait throttles provider calls. Limiter failures other than cancellation
// are logged and the call goes ahead.
func (s *Scanner) wait(ctx context.Context, key string, logger *zap.Logger) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx, key); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("mailbox rate limiter unavailable", zap.Error(err))
	}
	return nil
}

func (s *Scanner) recordError(result *Result, logger *zap.Logger, msgErr MessageError) {
	result.Errors = append(result.Errors, msgErr)
	s.metrics.IncScanMessageError(string(msgErr.Kind))
	logger.Warn("scan message error",
		zap.String("messageId", msgErr.MessageID),
		zap.String("kind", string(msgErr.Kind)),
		zap.Error(msgErr.Err),
	)
}
