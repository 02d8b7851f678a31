package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/applytrack/internal/observability"
	"github.com/kursadbilgin/applytrack/internal/provider"
	"github.com/kursadbilgin/applytrack/internal/queue"
	"github.com/kursadbilgin/applytrack/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minWorkerConcurrency = 1
	webhookLimiterKey    = "webhook"
)

// WorkerService drains the alerts queue into the webhook provider.
type WorkerService struct {
	consumer    queue.Consumer
	provider    provider.Provider
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
}

func NewWorkerService(
	consumer queue.Consumer,
	provider provider.Provider,
	rateLimiter ratelimit.RateLimiter,
	concurrency int,
	logger *zap.Logger,
) (*WorkerService, error) {
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WorkerService{
		consumer:    consumer,
		provider:    provider,
		rateLimiter: rateLimiter,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

func (s *WorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start runs the consumers until ctx is cancelled.
func (s *WorkerService) Start(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("alert worker started", zap.Int("workerId", workerID))

			if err := s.consumer.Consume(groupCtx, queue.AlertsQueue, s.processMessage); err != nil {
				s.logger.Error("alert worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("alert worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

// processMessage returns nil to ack, a plain error to requeue, and an error
// wrapping queue.ErrDeadLetter for failures a retry cannot fix.
func (s *WorkerService) processMessage(ctx context.Context, msg queue.AlertMessage) error {
	logger := s.logger.With(
		zap.String("messageId", msg.MessageID),
		zap.Int64("notificationId", msg.NotificationID),
	)

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, webhookLimiterKey); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	resp, err := s.provider.Send(ctx, provider.Alert{
		ID:             msg.MessageID,
		UserID:         msg.UserID,
		NotificationID: msg.NotificationID,
		CompanyID:      msg.CompanyID,
		CompanyName:    msg.CompanyName,
		Message:        msg.Message,
		CreatedAt:      msg.CreatedAt,
	})
	if err == nil {
		s.metrics.IncAlertRelayed()
		if resp != nil {
			logger.Debug("alert relayed",
				zap.Int("statusCode", resp.StatusCode),
				zap.String("requestId", resp.RequestID),
			)
		}
		return nil
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}

	s.metrics.IncAlertFailed(provider.FailureReason(err))
	if provider.IsTransient(err) {
		logger.Warn("alert relay failed, will retry", zap.Error(err))
		return err
	}

	logger.Error("alert relay failed permanently", zap.Error(err))
	return fmt.Errorf("%w: %v", queue.ErrDeadLetter, err)
}
