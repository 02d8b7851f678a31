package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/provider"
	"github.com/kursadbilgin/applytrack/internal/queue"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"github.com/kursadbilgin/applytrack/internal/scanner"
)

type fakeCompanyRepo struct {
	createFn             func(ctx context.Context, c *domain.Company) error
	getByIDFn            func(ctx context.Context, userID string, id int64) (*domain.Company, error)
	listFn               func(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error)
	updateFn             func(ctx context.Context, c *domain.Company) error
	deleteFn             func(ctx context.Context, userID string, id int64) error
	listWatchAddressesFn func(ctx context.Context, userID string) ([]repository.WatchAddress, error)
}

func (f *fakeCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCompanyRepo) List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, params)
	}
	return nil, nil
}

func (f *fakeCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeCompanyRepo) Delete(ctx context.Context, userID string, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeCompanyRepo) ListWatchAddresses(ctx context.Context, userID string) ([]repository.WatchAddress, error) {
	if f.listWatchAddressesFn != nil {
		return f.listWatchAddressesFn(ctx, userID)
	}
	return nil, nil
}

type fakeNotificationRepo struct {
	appendFn      func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	listFn        func(ctx context.Context, userID string) ([]domain.Notification, error)
	markReadFn    func(ctx context.Context, userID string, id int64) error
	countUnreadFn func(ctx context.Context, userID string) (int64, error)
}

func (f *fakeNotificationRepo) Append(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if f.appendFn != nil {
		return f.appendFn(ctx, n)
	}
	return n, nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, userID)
	}
	return 0, nil
}

type fakeScanner struct {
	scanFn func(
		ctx context.Context,
		userID string,
		cred identity.Credential,
		companies []domain.Company,
		existing []domain.Notification,
	) (*scanner.Result, error)
}

func (f *fakeScanner) Scan(
	ctx context.Context,
	userID string,
	cred identity.Credential,
	companies []domain.Company,
	existing []domain.Notification,
) (*scanner.Result, error) {
	if f.scanFn != nil {
		return f.scanFn(ctx, userID, cred, companies, existing)
	}
	return &scanner.Result{}, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released []string
	ttl      time.Duration
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, false, f.err
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return nil, false, nil
	}
	f.held[key] = true
	f.ttl = ttl

	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
		f.released = append(f.released, key)
		return nil
	}, true, nil
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.AlertMessage) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.AlertMessage) error {
	if f.publishFn != nil {
		return f.publishFn(ctx, queueName, msg)
	}
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeConsumer struct {
	consumeFn func(ctx context.Context, queueName string, handler queue.MessageHandler) error
}

func (f *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, queueName, handler)
	}
	<-ctx.Done()
	return nil
}

func (f *fakeConsumer) Close() error { return nil }

type fakeProvider struct {
	sendFn func(ctx context.Context, alert provider.Alert) (*provider.ProviderResponse, error)
}

func (f *fakeProvider) Send(ctx context.Context, alert provider.Alert) (*provider.ProviderResponse, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, alert)
	}
	return &provider.ProviderResponse{StatusCode: 200}, nil
}

type fakeRateLimiter struct {
	waitFn func(ctx context.Context, key string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, key string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, key)
	}
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

type fakeScanRunRepo struct {
	mu      sync.Mutex
	created []domain.ScanRun
	listFn  func(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error)
}

func (f *fakeScanRunRepo) Create(ctx context.Context, r *domain.ScanRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeScanRunRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, limit)
	}
	return nil, nil
}
