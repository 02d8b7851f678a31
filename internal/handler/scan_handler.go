package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/service"
)

type ScanService interface {
	Scan(ctx context.Context, userID string, cred identity.Credential) (*service.ScanReport, error)
	History(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error)
}

type ScanHandler struct {
	service ScanService
}

func NewScanHandler(service ScanService) (*ScanHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("scan service is required")
	}
	return &ScanHandler{service: service}, nil
}

type scanResponse struct {
	ScanID        string                 `json:"scanId"`
	Summary       string                 `json:"summary"`
	Candidates    int                    `json:"candidates"`
	Created       int                    `json:"created"`
	Duplicates    int                    `json:"duplicates"`
	Unmatched     int                    `json:"unmatched"`
	Notifications []notificationResponse `json:"notifications"`
	Errors        []scanErrorResponse    `json:"errors"`
}

type scanErrorResponse struct {
	MessageID string `json:"messageId"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// Scan checks the caller's mailbox with the credential in the
// X-Provider-Token headers.
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	report, err := h.service.Scan(c.UserContext(), identity.UserID(c), identity.CredentialFromRequest(c))
	if err != nil {
		return toHTTPError(err)
	}

	errs := make([]scanErrorResponse, 0, len(report.Errors))
	for _, e := range report.Errors {
		errs = append(errs, scanErrorResponse{
			MessageID: e.MessageID,
			Kind:      string(e.Kind),
			Error:     e.Err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(scanResponse{
		ScanID:        report.ScanID,
		Summary:       scanSummary(report),
		Candidates:    report.Candidates,
		Created:       len(report.Created),
		Duplicates:    report.Duplicates,
		Unmatched:     report.Unmatched,
		Notifications: toNotificationResponses(report.Created),
		Errors:        errs,
	})
}

type scanRunResponse struct {
	ID         string    `json:"id"`
	Outcome    string    `json:"outcome"`
	Candidates int       `json:"candidates"`
	Created    int       `json:"created"`
	Duplicates int       `json:"duplicates"`
	Unmatched  int       `json:"unmatched"`
	Failed     int       `json:"failed"`
	Error      *string   `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
}

func (h *ScanHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return toHTTPError(fmt.Errorf("%w: limit must be >= 0", domain.ErrValidation))
	}

	runs, err := h.service.History(c.UserContext(), identity.UserID(c), limit)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]scanRunResponse, 0, len(runs))
	for _, r := range runs {
		data = append(data, scanRunResponse{
			ID:         r.ID,
			Outcome:    r.Outcome,
			Candidates: r.Candidates,
			Created:    r.Created,
			Duplicates: r.Duplicates,
			Unmatched:  r.Unmatched,
			Failed:     r.Failed,
			Error:      r.Error,
			StartedAt:  r.StartedAt,
			DurationMS: r.Duration().Milliseconds(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

func scanSummary(report *service.ScanReport) string {
	switch {
	case len(report.Created) == 1:
		return "1 new mail"
	case len(report.Created) > 1:
		return fmt.Sprintf("%d new mails", len(report.Created))
	case report.Duplicates > 0:
		return "already notified"
	default:
		return "no matching mail found"
	}
}
