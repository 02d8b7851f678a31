package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/identity"
)

// Services are the use cases behind the authenticated /v1 API.
type Services struct {
	Companies     CompanyService
	Notifications NotificationService
	Scans         ScanService
}

func RegisterAPIRoutes(router fiber.Router, verifier *identity.SessionVerifier, services Services) error {
	companies, err := NewCompanyHandler(services.Companies)
	if err != nil {
		return err
	}
	notifications, err := NewNotificationHandler(services.Notifications)
	if err != nil {
		return err
	}
	scans, err := NewScanHandler(services.Scans)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1", identity.Middleware(verifier))

	v1.Post("/companies", companies.CreateCompany)
	v1.Get("/companies", companies.ListCompanies)
	v1.Get("/companies/:id", companies.GetCompany)
	v1.Put("/companies/:id", companies.UpdateCompany)
	v1.Delete("/companies/:id", companies.DeleteCompany)
	v1.Delete("/companies/:id/schedule", companies.ClearSchedule)
	v1.Get("/calendar", companies.Calendar)
	v1.Get("/dashboard", companies.Dashboard)

	v1.Get("/notifications", notifications.ListNotifications)
	v1.Get("/notifications/unread", notifications.UnreadCount)
	v1.Post("/notifications/:id/read", notifications.MarkRead)

	v1.Post("/scans", scans.Scan)
	v1.Get("/scans", scans.History)

	return nil
}
