package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"github.com/kursadbilgin/applytrack/internal/service"
	"github.com/kursadbilgin/applytrack/internal/transport"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

type stubCompanyService struct {
	createFn        func(ctx context.Context, c *domain.Company) (*domain.Company, error)
	getFn           func(ctx context.Context, userID string, id int64) (*domain.Company, error)
	listFn          func(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error)
	updateFn        func(ctx context.Context, c *domain.Company) (*domain.Company, error)
	deleteFn        func(ctx context.Context, userID string, id int64) error
	clearScheduleFn func(ctx context.Context, userID string, id int64) (*domain.Company, error)
	calendarFn      func(ctx context.Context, userID string, date string) ([]domain.Company, error)
	dashboardFn     func(ctx context.Context, userID string) (service.Dashboard, error)
}

func (s *stubCompanyService) Create(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if s.createFn != nil {
		return s.createFn(ctx, c)
	}
	return nil, errors.New("not implemented")
}

func (s *stubCompanyService) Get(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubCompanyService) List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID, params)
	}
	return nil, nil
}

func (s *stubCompanyService) Update(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, c)
	}
	return nil, errors.New("not implemented")
}

func (s *stubCompanyService) Delete(ctx context.Context, userID string, id int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, id)
	}
	return nil
}

func (s *stubCompanyService) ClearSchedule(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	if s.clearScheduleFn != nil {
		return s.clearScheduleFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubCompanyService) Calendar(ctx context.Context, userID string, date string) ([]domain.Company, error) {
	if s.calendarFn != nil {
		return s.calendarFn(ctx, userID, date)
	}
	return nil, nil
}

func (s *stubCompanyService) Dashboard(ctx context.Context, userID string) (service.Dashboard, error) {
	if s.dashboardFn != nil {
		return s.dashboardFn(ctx, userID)
	}
	return service.Dashboard{}, nil
}

type stubNotificationService struct {
	listFn        func(ctx context.Context, userID string) ([]domain.Notification, error)
	markReadFn    func(ctx context.Context, userID string, id int64) error
	unreadCountFn func(ctx context.Context, userID string) (int64, error)
}

func (s *stubNotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubNotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, userID, id)
	}
	return nil
}

func (s *stubNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

type stubScanService struct {
	scanFn    func(ctx context.Context, userID string, cred identity.Credential) (*service.ScanReport, error)
	historyFn func(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error)
}

func (s *stubScanService) History(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, userID, limit)
	}
	return nil, nil
}

func (s *stubScanService) Scan(ctx context.Context, userID string, cred identity.Credential) (*service.ScanReport, error) {
	if s.scanFn != nil {
		return s.scanFn(ctx, userID, cred)
	}
	return nil, errors.New("not implemented")
}

func newTestApp(t *testing.T, services Services) *fiber.App {
	t.Helper()

	if services.Companies == nil {
		services.Companies = &stubCompanyService{}
	}
	if services.Notifications == nil {
		services.Notifications = &stubNotificationService{}
	}
	if services.Scans == nil {
		services.Scans = &stubScanService{}
	}

	verifier, err := identity.NewSessionVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewSessionVerifier() error = %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	if err := RegisterAPIRoutes(app, verifier, services); err != nil {
		t.Fatalf("RegisterAPIRoutes() error = %v", err)
	}
	return app
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()

	verifier, err := identity.NewSessionVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewSessionVerifier() error = %v", err)
	}
	token, err := verifier.Issue(userID, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return "Bearer " + token
}

func performRequest(
	t *testing.T,
	app *fiber.App,
	method string,
	path string,
	body string,
	headers map[string]string,
) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

func authed(t *testing.T, userID string) map[string]string {
	return map[string]string{fiber.HeaderAuthorization: bearerToken(t, userID)}
}
